// Package tei provides a cross-encoder adapter for a text-embeddings-inference
// server hosting a reranking model such as cross-encoder/ms-marco-MiniLM-L-12-v2.
package tei

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Encoder implements the interfaces.
var (
	_ driven.CrossEncoder      = (*Encoder)(nil)
	_ driven.BatchCrossEncoder = (*Encoder)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultModel   = "cross-encoder/ms-marco-MiniLM-L-12-v2"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the TEI reranker.
type Config struct {
	// BaseURL is the TEI server URL (default: http://localhost:8080).
	BaseURL string

	// Model is reported for logging; the server decides which model runs.
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Encoder scores query/passage pairs through POST /rerank.
// Raw logits are requested so scores match the model's classification head.
type Encoder struct {
	client *httpjson.Client
	model  string
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
	Truncate  bool     `json:"truncate"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// New creates a TEI reranker client.
func New(cfg Config) *Encoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Encoder{
		client: httpjson.New("tei", cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
	}
}

// Score scores a single pair.
func (e *Encoder) Score(ctx context.Context, query, passage string) (float64, error) {
	scores, err := e.ScoreBatch(ctx, query, []string{passage})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// ScoreBatch scores all passages in one request, returning scores in passage order.
func (e *Encoder) ScoreBatch(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	var results []rerankResult
	err := e.client.Post(ctx, "/rerank", rerankRequest{
		Query:     query,
		Texts:     passages,
		RawScores: true,
		Truncate:  true,
	}, &results)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(passages))
	seen := make([]bool, len(passages))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(passages) {
			return nil, fmt.Errorf("tei: result index %d out of range", r.Index)
		}
		scores[r.Index] = r.Score
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("tei: no score for passage %d", i)
		}
	}
	return scores, nil
}

// ModelName returns the configured model name.
func (e *Encoder) ModelName() string {
	return e.model
}

// Ping checks the server's /health endpoint.
func (e *Encoder) Ping(ctx context.Context) error {
	return e.client.Ping(ctx, "/health")
}
