// Package gemini wraps the Google GenAI SDK for JSON-only completions.
//
// It mirrors the llm package surface (CompleteJSON, HealthCheck) so the
// extract package can treat both providers the same way.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"contactsync/internal/services/llm"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

// Config captures the Gemini API settings.
type Config struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// GenerateFunc issues a single GenerateContent call. It matches
// (*genai.Models).GenerateContent so tests can substitute it.
type GenerateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client lazily constructs a genai client on first use.
type Client struct {
	cfg     Config
	timeout time.Duration

	mu       sync.Mutex
	generate GenerateFunc
}

// Option customizes the client.
type Option func(*Client)

// WithGenerateFunc replaces the SDK call, primarily for tests.
func WithGenerateFunc(fn GenerateFunc) Option {
	return func(c *Client) {
		c.generate = fn
	}
}

// NewClient builds a Gemini client. No network calls happen until the first request.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{cfg: cfg, timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

func (c *Client) generator(ctx context.Context) (GenerateFunc, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generate != nil {
		return c.generate, nil
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  c.cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.generate = client.Models.GenerateContent
	return c.generate, nil
}

// CompleteJSON sends the prompts and returns the model's JSON text.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("gemini complete: user prompt required")
	}
	generate, err := c.generator(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}
	resp, err := generate(ctx, c.cfg.Model, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini complete: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini complete: empty response")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini complete: empty content")
	}
	return text, nil
}

// HealthCheck confirms the key and model can answer a trivial JSON prompt.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, "You must respond with JSON only.", `Respond with {"ok":true}`)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		return fmt.Errorf("gemini health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("gemini health: unexpected response")
	}
	return nil
}
