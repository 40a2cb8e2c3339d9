// Package chromem provides an embedded vector store backed by chromem-go.
// Data persists under a directory when a path is configured.
package chromem

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultCollection = "embeddings"
	DefaultDimensions = 768
)

// Config holds configuration for the chromem store.
type Config struct {
	// Path is the persistence directory. Empty keeps the store in memory.
	Path string

	// Collection is the collection name (default: embeddings).
	Collection string

	// Dimensions is the embedding size, used to build the listing probe (default: 768).
	Dimensions int
}

// Store implements driven.VectorStore on a chromem-go collection using cosine similarity.
type Store struct {
	// mu serialises writes against the count-then-query sequences of Search and ListAll.
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	dimensions int
}

// New opens or creates the store.
func New(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}

	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	metadata := map[string]string{"hnsw:space": "cosine"}
	collection, err := db.GetOrCreateCollection(cfg.Collection, metadata, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", cfg.Collection, err)
	}

	return &Store{
		db:         db,
		collection: collection,
		dimensions: cfg.Dimensions,
	}, nil
}

// Upsert adds all chunks in one Add call.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) ([]string, error) {
	if err := vectorstore.CheckBatch(chunks, vectors); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	if len(vectors[0]) != s.dimensions {
		return nil, fmt.Errorf("vector dimension %d does not match store dimension %d", len(vectors[0]), s.dimensions)
	}

	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	for i, c := range chunks {
		ids[i] = vectorstore.ChunkID(c)
		metadatas[i] = c.StoreMetadata()
		contents[i] = c.Text
		// chromem normalises embeddings in place.
		embeddings[i] = append([]float32(nil), vectors[i]...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collection.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}
	return ids, nil
}

// Search queries the k nearest records. k is capped at the collection size.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(k, s.collection.Count())
	if n <= 0 {
		return nil, nil
	}
	return s.query(ctx, append([]float32(nil), query...), n)
}

// ListAll returns every record by querying the whole collection with a uniform probe vector.
func (s *Store) ListAll(ctx context.Context) ([]domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.collection.Count()
	if n == 0 {
		return nil, nil
	}

	probe := make([]float32, s.dimensions)
	for i := range probe {
		probe[i] = 1
	}
	records, err := s.query(ctx, probe, n)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Distance = 0
	}
	return records, nil
}

func (s *Store) query(ctx context.Context, vector []float32, n int) ([]domain.StoredRecord, error) {
	results, err := s.collection.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	records := make([]domain.StoredRecord, len(results))
	for i, r := range results {
		records[i] = domain.StoredRecord{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: maps.Clone(r.Metadata),
			Distance: 1 - float64(r.Similarity),
		}
	}
	return records, nil
}

// Delete removes records by id.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// DeleteWhere removes records whose metadata matches every filter pair.
func (s *Store) DeleteWhere(ctx context.Context, filter map[string]string) error {
	if len(filter) == 0 {
		return vectorstore.ErrEmptyFilter
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collection.Delete(ctx, filter, nil); err != nil {
		return fmt.Errorf("delete documents where %v: %w", filter, err)
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(_ context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close is a no-op; the persistent DB writes through on every change.
func (s *Store) Close() error {
	return nil
}
