package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestCheckBatch(t *testing.T) {
	chunks := []domain.Chunk{{Text: "a"}, {Text: "b"}}

	assert.NoError(t, CheckBatch(chunks, [][]float32{{1, 0}, {0, 1}}))
	assert.ErrorContains(t, CheckBatch(chunks, [][]float32{{1, 0}}), "length mismatch")
	assert.ErrorContains(t, CheckBatch(chunks, [][]float32{{1, 0}, {}}), "empty vector")
	assert.ErrorContains(t, CheckBatch(chunks, [][]float32{{1, 0}, {1, 0, 0}}), "dimension")
	assert.NoError(t, CheckBatch(nil, nil))
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "given", ChunkID(domain.Chunk{ID: "given"}))
	a, b := ChunkID(domain.Chunk{}), ChunkID(domain.Chunk{})
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestMatches(t *testing.T) {
	meta := map[string]string{"filename": "a.docx", "side": "document"}
	assert.True(t, Matches(meta, map[string]string{"filename": "a.docx"}))
	assert.True(t, Matches(meta, nil))
	assert.False(t, Matches(meta, map[string]string{"filename": "b.docx"}))
	assert.False(t, Matches(meta, map[string]string{"filename": "a.docx", "side": "query"}))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 0}))
}
