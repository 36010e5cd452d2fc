package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"contactsync/internal/config"
	"contactsync/internal/contacts"
	"contactsync/internal/logging"
	"contactsync/internal/services"
	"contactsync/internal/services/gemini"
	"contactsync/internal/services/llm"
)

// SystemPrompt instructs the model to return a JSON contact list.
const SystemPrompt = `You extract team members from company web pages.
For each person, return:
- Full name
- Job title (an actual role like Partner, Analyst, Principal; not a bio or summary)

If the title isn't clear or it's just a background description, leave the title blank.

Respond with JSON only, in the form:
{"contacts": [{"name": "Jane Doe", "title": "Partner"}, {"name": "John Smith", "title": ""}]}`

// Extractor produces candidates for one organization from raw text.
type Extractor interface {
	Extract(ctx context.Context, organization, text string) ([]contacts.Candidate, error)
}

// Completer is the JSON completion surface shared by the llm and gemini clients.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// HealthChecker is implemented by clients that can verify their credentials.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ModelExtractor extracts candidates with a JSON completion client.
type ModelExtractor struct {
	completer Completer
	provider  string
	logger    *slog.Logger
}

// NewModelExtractor wraps a completer. provider is used in logs only.
func NewModelExtractor(completer Completer, provider string, logger *slog.Logger) *ModelExtractor {
	return &ModelExtractor{
		completer: completer,
		provider:  provider,
		logger:    logging.NewComponentLogger(logger, "extract"),
	}
}

// NewFromConfig builds the extractor selected by extraction.provider.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*ModelExtractor, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "extract", "config required", nil)
	}
	if err := cfg.ExtractionReady(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "extract", "provider not ready", err)
	}
	switch cfg.Extraction.Provider {
	case config.ProviderGemini:
		client := gemini.NewClient(gemini.Config{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
		})
		return NewModelExtractor(client, config.ProviderGemini, logger), nil
	default:
		client := llm.NewClient(cfg.LLM, llm.WithLogger(logger))
		return NewModelExtractor(client, config.ProviderOpenRouter, logger), nil
	}
}

// HealthCheck verifies the underlying client when it supports it.
func (e *ModelExtractor) HealthCheck(ctx context.Context) error {
	checker, ok := e.completer.(HealthChecker)
	if !ok {
		return nil
	}
	return checker.HealthCheck(ctx)
}

// Provider names the backing model provider.
func (e *ModelExtractor) Provider() string {
	return e.provider
}

// Extract sends text to the model and decodes the candidates. Transport
// failures and empty results are reported as services.ErrExtraction.
func (e *ModelExtractor) Extract(ctx context.Context, organization, text string) ([]contacts.Candidate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, services.Wrap(services.ErrExtraction, organization, "extract", "no source text", nil)
	}
	logger := logging.WithContext(ctx, e.logger)

	payload, err := e.completer.CompleteJSON(ctx, SystemPrompt, "Here is the text:\n"+text)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrExtraction, organization, "extract",
			fmt.Sprintf("%s request failed", e.provider), err)
	}

	candidates := DecodeCandidates(payload)
	if len(candidates) == 0 {
		return nil, services.Wrap(services.ErrExtraction, organization, "extract", "model returned no contacts", nil)
	}
	logger.Info("extracted candidates",
		logging.String(logging.FieldEventType, "extraction_complete"),
		logging.String("provider", e.provider),
		logging.Int("candidates", len(candidates)),
	)
	return candidates, nil
}
