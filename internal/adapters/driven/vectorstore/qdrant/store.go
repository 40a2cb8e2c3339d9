// Package qdrant provides a vector store adapter for a Qdrant server over its REST API.
// It assumes cosine distance and creates the collection if missing.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "embeddings"
	DefaultTimeout    = 15 * time.Second

	scrollPageSize = 256

	payloadText     = "text"
	payloadRecordID = "record_id"
)

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection is the collection name (default: embeddings).
	Collection string

	// Dimensions is the vector size used when creating the collection.
	Dimensions int

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration
}

// Store is a minimal REST client for one Qdrant collection.
type Store struct {
	client     *httpjson.Client
	collection string
	dimensions int
	pageSize   int
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

type scoredPoint struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type filter struct {
	Must []condition `json:"must"`
}

type condition struct {
	Key   string `json:"key"`
	Match struct {
		Value string `json:"value"`
	} `json:"match"`
}

// New creates a Qdrant store and ensures the collection exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions <= 0 {
		return nil, errors.New("qdrant: dimensions must be positive")
	}

	s := &Store{
		client:     httpjson.New("qdrant", cfg.URL, cfg.Timeout).SetHeader("api-key", cfg.APIKey),
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		pageSize:   scrollPageSize,
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(s.collection) + suffix
}

func (s *Store) ensureCollection(ctx context.Context) error {
	err := s.client.Get(ctx, s.collectionPath(""), nil)
	if err == nil {
		return nil
	}
	if httpjson.StatusCode(err) != http.StatusNotFound {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimensions,
			"distance": "Cosine",
		},
	}
	if err := s.client.Do(ctx, http.MethodPut, s.collectionPath(""), body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	return nil
}

// pointID maps a record id onto the UUID space Qdrant accepts.
func pointID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

// Upsert writes every chunk in a single points request.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) ([]string, error) {
	if err := vectorstore.CheckBatch(chunks, vectors); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	ids := make([]string, len(chunks))
	points := make([]point, len(chunks))
	for i, c := range chunks {
		ids[i] = vectorstore.ChunkID(c)
		payload := map[string]any{
			payloadText:     c.Text,
			payloadRecordID: ids[i],
		}
		for k, v := range c.StoreMetadata() {
			payload[k] = v
		}
		points[i] = point{ID: pointID(ids[i]), Vector: vectors[i], Payload: payload}
	}

	body := map[string]any{"points": points}
	if err := s.client.Do(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), body, nil); err != nil {
		return nil, fmt.Errorf("upsert points: %w", err)
	}
	return ids, nil
}

// Search returns the k nearest points.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.StoredRecord, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []scoredPoint `json:"result"`
	}
	if err := s.client.Do(ctx, http.MethodPost, s.collectionPath("/points/search"), req, &resp); err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	out := make([]domain.StoredRecord, len(resp.Result))
	for i, p := range resp.Result {
		out[i] = toRecord(p)
		out[i].Distance = 1 - p.Score
	}
	return out, nil
}

// ListAll scrolls through the whole collection.
func (s *Store) ListAll(ctx context.Context) ([]domain.StoredRecord, error) {
	var out []domain.StoredRecord
	var offset any
	for {
		req := map[string]any{
			"limit":        s.pageSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points         []scoredPoint `json:"points"`
				NextPageOffset any           `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.client.Do(ctx, http.MethodPost, s.collectionPath("/points/scroll"), req, &resp); err != nil {
			return nil, fmt.Errorf("scroll points: %w", err)
		}
		for _, p := range resp.Result.Points {
			out = append(out, toRecord(p))
		}
		if resp.Result.NextPageOffset == nil {
			return out, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Delete removes points by record id.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	points := make([]string, len(ids))
	for i, id := range ids {
		points[i] = pointID(id)
	}
	body := map[string]any{"points": points}
	if err := s.client.Do(ctx, http.MethodPost, s.collectionPath("/points/delete?wait=true"), body, nil); err != nil {
		return fmt.Errorf("delete points: %w", err)
	}
	return nil
}

// DeleteWhere removes points whose payload matches every filter pair.
func (s *Store) DeleteWhere(ctx context.Context, where map[string]string) error {
	if len(where) == 0 {
		return vectorstore.ErrEmptyFilter
	}
	f := filter{}
	for k, v := range where {
		c := condition{Key: k}
		c.Match.Value = v
		f.Must = append(f.Must, c)
	}
	body := map[string]any{"filter": f}
	if err := s.client.Do(ctx, http.MethodPost, s.collectionPath("/points/delete?wait=true"), body, nil); err != nil {
		return fmt.Errorf("delete points by filter: %w", err)
	}
	return nil
}

// Count returns the exact number of points.
func (s *Store) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.client.Do(ctx, http.MethodPost, s.collectionPath("/points/count"), map[string]any{"exact": true}, &resp); err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return resp.Result.Count, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func toRecord(p scoredPoint) domain.StoredRecord {
	rec := domain.StoredRecord{Metadata: make(map[string]string)}
	for k, v := range p.Payload {
		str, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case payloadText:
			rec.Text = str
		case payloadRecordID:
			rec.ID = str
		default:
			rec.Metadata[k] = str
		}
	}
	if rec.ID == "" {
		rec.ID = fmt.Sprint(p.ID)
	}
	return rec
}
