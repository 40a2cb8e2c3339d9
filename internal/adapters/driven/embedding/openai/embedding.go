// Package openai embeds text through POST /embeddings on the OpenAI API or
// any server that mirrors it.
package openai

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding"
	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "text-embedding-3-small"
	DefaultTimeout   = 60 * time.Second
	DefaultBatchSize = 256

	fallbackDimensions = 1536
)

var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config configures NewEmbeddingService. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions overrides the model's native size. It is sent only to
	// text-embedding-3 models, the ones that accept it.
	Dimensions int

	// Prefix defaults to none. Use nomic when a compatible server hosts
	// nomic-embed-text.
	Prefix domain.PrefixConvention

	BatchSize int
}

type EmbeddingService struct {
	client     *httpjson.Client
	model      string
	dimensions int
	prefix     domain.PrefixConvention
	batchSize  int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	s := &EmbeddingService{
		model:      cmp.Or(cfg.Model, DefaultModel),
		dimensions: cfg.Dimensions,
		prefix:     cmp.Or(cfg.Prefix, domain.PrefixNone),
		batchSize:  cfg.BatchSize,
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultBatchSize
	}
	if s.dimensions == 0 {
		s.dimensions = fallbackDimensions
		if d, ok := modelDimensions[s.model]; ok {
			s.dimensions = d
		}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	s.client = httpjson.New("openai", cmp.Or(cfg.BaseURL, DefaultBaseURL), timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)
	return s, nil
}

func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := embedding.ApplyAll(s.prefix, embedding.SideDocument, texts)
	return embedding.InBatches(ctx, inputs, s.batchSize, s.embedBatch)
}

func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.embedBatch(ctx, []string{embedding.Apply(s.prefix, embedding.SideQuery, text)})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// embedBatch returns the vectors in input order; the API may reorder them.
func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := embeddingRequest{Model: s.model, Input: texts}
	if strings.HasPrefix(s.model, "text-embedding-3-") {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	if err := s.client.Post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", resp.Error.Message)
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		vecs[d.Index] = embedding.ToFloat32(d.Embedding)
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("openai: no embedding returned for input %d", i)
		}
	}
	return vecs, nil
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists models, which authenticates without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, "/models")
}

func (s *EmbeddingService) Close() error { return nil }
