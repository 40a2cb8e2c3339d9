// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.1"
	DefaultLLMTimeout = 5 * time.Minute
)

// LLMConfig configures LLMService. Zero fields take the defaults above.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates answers with a model served by Ollama.
type LLMService struct {
	client *httpjson.Client
	model  string
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options are pointers so that a zero temperature is still sent.
type options struct {
	NumPredict  *int     `json:"num_predict,omitempty"`
	NumCtx      *int     `json:"num_ctx,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	return &LLMService{
		client: httpjson.New("ollama", cmp.Or(cfg.BaseURL, DefaultBaseURL), cmp.Or(cfg.Timeout, DefaultLLMTimeout)),
		model:  cmp.Or(cfg.Model, DefaultLLMModel),
	}
}

func ptr[T any](v T) *T { return &v }

// buildOptions maps generation options onto Ollama's. A non-positive token
// limit becomes num_predict -1, which Ollama reads as unlimited.
func buildOptions(opts driven.GenerateOptions) *options {
	o := &options{
		NumPredict:  ptr(-1),
		Temperature: ptr(opts.Temperature),
		Stop:        opts.StopWords,
	}
	if opts.MaxTokens > 0 {
		o.NumPredict = ptr(opts.MaxTokens)
	}
	if opts.TopP > 0 {
		o.TopP = ptr(opts.TopP)
	}
	if opts.ContextWindow > 0 {
		o.NumCtx = ptr(opts.ContextWindow)
	}
	return o
}

// Generate produces a completion via /api/generate without streaming.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var resp generateResponse
	err := s.client.Post(ctx, "/api/generate", generateRequest{
		Model:   s.model,
		Prompt:  prompt,
		System:  opts.System,
		Options: buildOptions(opts),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}
	return resp.Response, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping checks /api/tags, which lists local models without loading one.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, "/api/tags")
}

func (s *LLMService) Close() error { return nil }
