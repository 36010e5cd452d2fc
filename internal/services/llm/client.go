package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"contactsync/internal/config"
	"contactsync/internal/logging"
)

const (
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout     = 60 * time.Second

	healthSystemPrompt = "You must respond with JSON only."
	healthUserPrompt   = `Respond with {"ok":true}`
)

// RetryPolicy controls how failed completions are retried. Delays double from
// BaseDelay and never exceed MaxDelay; a server Retry-After wins when present.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Sleep replaces the context-aware timer, mainly in tests.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy allows five attempts with 1s..10s backoff.
var DefaultRetryPolicy = RetryPolicy{Attempts: 5, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

// delay returns the backoff before retrying after attempt (1-based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		if p.MaxDelay > 0 && d > p.MaxDelay/2 {
			return p.MaxDelay
		}
		d *= 2
	}
	return p.limit(d)
}

func (p RetryPolicy) limit(d time.Duration) time.Duration {
	switch {
	case d < 0:
		return 0
	case p.MaxDelay > 0 && d > p.MaxDelay:
		return p.MaxDelay
	}
	return d
}

func (p RetryPolicy) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Sleep != nil {
		p.Sleep(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client sends contact-extraction prompts to an OpenRouter-compatible chat
// completions endpoint and returns the model's JSON content.
type Client struct {
	settings   config.LLM
	endpoint   string
	httpClient *http.Client
	retry      RetryPolicy
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry replaces DefaultRetryPolicy.
func WithRetry(policy RetryPolicy) Option {
	return func(c *Client) { c.retry = policy }
}

// WithLogger reports retries at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.NewComponentLogger(logger, "llm") }
}

// NewClient builds a client from the [llm] config section. An empty
// base_url targets OpenRouter.
func NewClient(settings config.LLM, opts ...Option) *Client {
	settings.APIKey = strings.TrimSpace(settings.APIKey)
	settings.Model = strings.TrimSpace(settings.Model)
	settings.Referer = strings.TrimSpace(settings.Referer)
	settings.Title = strings.TrimSpace(settings.Title)

	timeout := defaultTimeout
	if settings.TimeoutSeconds > 0 {
		timeout = time.Duration(settings.TimeoutSeconds) * time.Second
	}
	c := &Client{
		settings:   settings,
		endpoint:   strings.TrimSpace(settings.BaseURL),
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetryPolicy,
		logger:     logging.NewNop(),
	}
	if c.endpoint == "" {
		c.endpoint = openRouterEndpoint
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Model() string { return c.settings.Model }

// CompleteJSON sends one system and one user message with JSON response
// format and temperature 0, retrying transient failures.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", errors.New("llm complete: system prompt required")
	case userPrompt == "":
		return "", errors.New("llm complete: page text required")
	case c.settings.APIKey == "":
		return "", errors.New("llm complete: api key required")
	}
	return c.completeWithRetry(ctx, c.request(systemPrompt, userPrompt), "llm complete")
}

// HealthCheck asks the model for {"ok":true}, which proves the key, model
// and JSON mode all work.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.settings.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	content, err := c.completeWithRetry(ctx, c.request(healthSystemPrompt, healthUserPrompt), "llm health")
	if err != nil {
		return err
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &reply); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !reply.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func (c *Client) request(systemPrompt, userPrompt string) chatCompletionRequest {
	return chatCompletionRequest{
		Model: c.settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}
}
