package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

type mockChunker struct {
	name string
}

func (m *mockChunker) Name() string                          { return m.name }
func (m *mockChunker) Split(_ []domain.Page) []domain.Chunk { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())

	r.Register("b", func(_ map[string]any) (driven.Chunker, error) { return &mockChunker{name: "b"}, nil })
	r.Register("a", func(cfg map[string]any) (driven.Chunker, error) {
		name, _ := cfg["name"].(string)
		return &mockChunker{name: name}, nil
	})

	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
	assert.Equal(t, []string{"a", "b"}, r.Names())

	c, err := r.Build("a", map[string]any{"name": "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", c.Name())

	_, err = r.Build("c", nil)
	assert.EqualError(t, err, "unknown processor: c")
}

func TestRegisterDefaults_Chunker(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	tests := []struct {
		name string
		cfg  map[string]any
		size int
	}{
		{"nil config", nil, chunker.DefaultChunkSize},
		{"int size", map[string]any{"chunk_size": 800}, 800},
		{"int64 size from toml", map[string]any{"chunk_size": int64(900)}, 900},
		{"float size from json", map[string]any{"chunk_size": float64(700)}, 700},
		{"wrong type ignored", map[string]any{"chunk_size": "big"}, chunker.DefaultChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := r.Build("chunker", tt.cfg)
			require.NoError(t, err)
			p, ok := c.(*chunker.Processor)
			require.True(t, ok)
			assert.Equal(t, tt.size, p.ChunkSize())
		})
	}
}
