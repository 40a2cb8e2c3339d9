package postprocessors

import (
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/values"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// ChunkerName is the registry name of the sentence chunker.
const ChunkerName = "chunker"

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register(ChunkerName, buildChunker)
}

// buildChunker reads:
//   - chunk_size (int): characters a chunk must exceed before closing (default 1200)
//   - carry_over (bool): seed the next chunk with the closing sentence (default false)
func buildChunker(cfg map[string]any) (driven.Chunker, error) {
	var opts []chunker.Option
	if size := values.Int(cfg["chunk_size"]); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if carry, ok := cfg["carry_over"]; ok {
		opts = append(opts, chunker.WithCarryOver(values.Bool(carry)))
	}
	return chunker.New(opts...)
}
