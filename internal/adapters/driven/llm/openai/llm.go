// Package openai generates answers with the OpenAI chat completions API
// or any server that speaks it (vLLM, Azure OpenAI, LM Studio).
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures NewLLMService. Only APIKey is required.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService is a driven.LLMService over /chat/completions.
type LLMService struct {
	client *httpjson.Client
	model  string
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature *float64            `json:"temperature,omitempty"`
	TopP        *float64            `json:"top_p,omitempty"`
	Stop        []string            `json:"stop,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      chatCompletionMsg `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	baseURL, model, timeout := cfg.BaseURL, cfg.Model, cfg.Timeout
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultLLMModel
	}
	if timeout == 0 {
		timeout = DefaultLLMTimeout
	}
	return &LLMService{
		client: httpjson.New("openai", baseURL, timeout).SetHeader("Authorization", "Bearer "+cfg.APIKey),
		model:  model,
	}, nil
}

// Generate sends an optional system message followed by prompt as the user turn.
// ContextWindow has no OpenAI counterpart and is dropped.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var resp chatCompletionResponse
	if err := s.client.Post(ctx, "/chat/completions", s.request(prompt, opts), &resp); err != nil {
		return "", err
	}
	switch {
	case resp.Error != nil:
		return "", fmt.Errorf("openai error: %s", resp.Error.Message)
	case len(resp.Choices) == 0:
		return "", errors.New("openai: no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) request(prompt string, opts driven.GenerateOptions) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:       s.model,
		Temperature: &opts.Temperature,
		Stop:        opts.StopWords,
	}
	if opts.System != "" {
		req.Messages = append(req.Messages, chatCompletionMsg{Role: "system", Content: opts.System})
	}
	req.Messages = append(req.Messages, chatCompletionMsg{Role: "user", Content: prompt})
	req.MaxTokens = max(opts.MaxTokens, 0)
	if opts.TopP > 0 {
		req.TopP = &opts.TopP
	}
	return req
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which authenticates without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, "/models")
}

func (s *LLMService) Close() error { return nil }
