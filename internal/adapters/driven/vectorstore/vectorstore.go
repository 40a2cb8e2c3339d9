// Package vectorstore holds helpers shared by the vector store adapters.
package vectorstore

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ErrEmptyFilter is returned by DeleteWhere when the filter has no pairs.
var ErrEmptyFilter = errors.New("delete filter must not be empty")

// CheckBatch validates that every chunk has a vector of the same dimension.
func CheckBatch(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	for i := range vectors {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("empty vector for chunk %d", i)
		}
		if len(vectors[i]) != len(vectors[0]) {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(vectors[i]), len(vectors[0]))
		}
	}
	return nil
}

// ChunkID returns the chunk's id, generating one when it has none.
func ChunkID(c domain.Chunk) string {
	if c.ID != "" {
		return c.ID
	}
	return uuid.NewString()
}

// Matches reports whether metadata contains every filter pair.
func Matches(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// Cosine returns the cosine similarity of a and b, or 0 when either is zero
// or their dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
