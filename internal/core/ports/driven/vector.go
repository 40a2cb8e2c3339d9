package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorStore persists chunk embeddings and performs similarity search.
// Every record carries the chunk text and the metadata from domain.Chunk.StoreMetadata.
type VectorStore interface {
	// Upsert writes all chunks with their vectors in a single batch and returns
	// the stored ids in chunk order. len(vectors) must equal len(chunks).
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) ([]string, error)

	// Search returns up to k records nearest to the query vector, closest first.
	Search(ctx context.Context, query []float32, k int) ([]domain.StoredRecord, error)

	// ListAll returns every stored record, without vectors.
	ListAll(ctx context.Context) ([]domain.StoredRecord, error)

	// Delete removes the records with the given ids. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// DeleteWhere removes every record whose metadata matches all filter pairs.
	// Matching nothing is not an error.
	DeleteWhere(ctx context.Context, filter map[string]string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
