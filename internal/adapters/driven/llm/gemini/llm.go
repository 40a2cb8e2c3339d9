// Package gemini provides an LLM service adapter using the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel      = "gemini-1.5-flash"
	DefaultMaxRetries = 3
	DefaultRetryDelay = 30 * time.Second
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the generative model to use (default: gemini-1.5-flash).
	Model string

	// MaxRetries bounds attempts on rate-limit errors (default: 3).
	MaxRetries int

	// RetryDelay is the wait between rate-limited attempts (default: 30s).
	RetryDelay time.Duration
}

// generateFunc sends one generation request against a configured model.
type generateFunc func(ctx context.Context, model *genai.GenerativeModel, prompt string) (*genai.GenerateContentResponse, error)

// LLMService provides LLM operations using Gemini.
type LLMService struct {
	client     *genai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	generate   generateFunc
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newService(client, cfg), nil
}

func newService(client *genai.Client, cfg Config) *LLMService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &LLMService{
		client:     client,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		generate: func(ctx context.Context, m *genai.GenerativeModel, prompt string) (*genai.GenerateContentResponse, error) {
			return m.GenerateContent(ctx, genai.Text(prompt))
		},
	}
}

// configure applies generation options to a model handle.
func configure(m *genai.GenerativeModel, opts driven.GenerateOptions) {
	m.SetTemperature(float32(opts.Temperature))
	if opts.TopP > 0 {
		m.SetTopP(float32(opts.TopP))
	}
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if len(opts.StopWords) > 0 {
		m.StopSequences = opts.StopWords
	}
	if opts.System != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(opts.System))
	}
}

// Generate produces a completion, retrying when the API reports rate limiting.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m := &genai.GenerativeModel{}
	if s.client != nil {
		m = s.client.GenerativeModel(s.model)
	}
	configure(m, opts)

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		resp, err := s.generate(ctx, m, prompt)
		if err == nil {
			return responseText(resp)
		}
		lastErr = err
		if !isRateLimit(err) || attempt == s.maxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return "", fmt.Errorf("gemini: generate: %w", lastErr)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini: empty response")
	}
	var parts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				parts = append(parts, string(text))
			}
		}
	}
	if len(parts) == 0 {
		return "", errors.New("gemini: no text in response")
	}
	return strings.Join(parts, "\n"), nil
}

func isRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping requests a one-token reply to validate the key and model.
func (s *LLMService) Ping(ctx context.Context) error {
	m := &genai.GenerativeModel{}
	if s.client != nil {
		m = s.client.GenerativeModel(s.model)
	}
	configure(m, driven.GenerateOptions{MaxTokens: 1})
	if _, err := s.generate(ctx, m, "ping"); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
