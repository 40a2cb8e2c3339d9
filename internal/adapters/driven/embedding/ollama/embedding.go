// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding"
	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768
)

// Config configures NewEmbeddingService. Zero values take the defaults
// above and the nomic prefix convention.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
	Prefix     domain.PrefixConvention

	// RequestsPerSecond paces calls to the server; zero is unpaced.
	RequestsPerSecond float64
}

// EmbeddingService calls /api/embeddings once per text, since Ollama takes
// a single prompt per request.
type EmbeddingService struct {
	client     *httpjson.Client
	model      string
	dimensions int
	prefix     domain.PrefixConvention
	limiter    *rate.Limiter
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	timeout, dims := cfg.Timeout, cfg.Dimensions
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if dims == 0 {
		dims = DefaultDimensions
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &EmbeddingService{
		client:     httpjson.New("ollama", cmp.Or(cfg.BaseURL, DefaultBaseURL), timeout),
		model:      cmp.Or(cfg.Model, DefaultModel),
		dimensions: dims,
		prefix:     cmp.Or(cfg.Prefix, domain.PrefixNomic),
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// EmbedDocuments embeds chunk texts with the document-side convention.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range embedding.ApplyAll(s.prefix, embedding.SideDocument, texts) {
		vec, err := s.embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// EmbedQuery embeds a question with the query-side convention.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, embedding.Apply(s.prefix, embedding.SideQuery, text))
}

func (s *EmbeddingService) embed(ctx context.Context, prompt string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := s.client.Post(ctx, "/api/embeddings", embedRequest{Model: s.model, Prompt: prompt}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama: empty embedding for model %s", s.model)
	}
	return embedding.ToFloat32(resp.Embedding), nil
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks /api/tags without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, "/api/tags")
}

func (s *EmbeddingService) Close() error { return nil }
