// Package memory provides an in-memory vector store using brute-force cosine search.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type entry struct {
	record domain.StoredRecord
	vector []float32
	seq    int
}

// Store is an in-memory implementation of driven.VectorStore.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	nextSeq int
}

// New creates an empty in-memory vector store.
func New() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Upsert stores chunks with their vectors, replacing records with the same id.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := vectorstore.CheckBatch(chunks, vectors); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		id := vectorstore.ChunkID(c)
		ids[i] = id
		s.entries[id] = &entry{
			record: domain.StoredRecord{
				ID:       id,
				Text:     c.Text,
				Metadata: c.StoreMetadata(),
			},
			vector: append([]float32(nil), vectors[i]...),
			seq:    s.nextSeq,
		}
		s.nextSeq++
	}
	return ids, nil
}

// Search ranks every record by cosine distance to the query.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]*entry, 0, len(s.entries))
	distances := make(map[*entry]float64, len(s.entries))
	for _, e := range s.entries {
		ranked = append(ranked, e)
		distances[e] = 1 - vectorstore.Cosine(query, e.vector)
	}
	sort.Slice(ranked, func(i, j int) bool {
		di, dj := distances[ranked[i]], distances[ranked[j]]
		if di != dj {
			return di < dj
		}
		return ranked[i].seq < ranked[j].seq
	})

	out := make([]domain.StoredRecord, 0, min(k, len(ranked)))
	for _, e := range ranked[:min(k, len(ranked))] {
		rec := copyRecord(e.record)
		rec.Distance = distances[e]
		out = append(out, rec)
	}
	return out, nil
}

// ListAll returns every record in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]domain.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	out := make([]domain.StoredRecord, len(ordered))
	for i, e := range ordered {
		out[i] = copyRecord(e.record)
	}
	return out, nil
}

// Delete removes records by id.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

// DeleteWhere removes records whose metadata matches the filter.
func (s *Store) DeleteWhere(ctx context.Context, filter map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(filter) == 0 {
		return vectorstore.ErrEmptyFilter
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if vectorstore.Matches(e.record.Metadata, filter) {
			delete(s.entries, id)
		}
	}
	return nil
}

// Count returns the number of records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func copyRecord(r domain.StoredRecord) domain.StoredRecord {
	r.Metadata = maps.Clone(r.Metadata)
	return r
}
