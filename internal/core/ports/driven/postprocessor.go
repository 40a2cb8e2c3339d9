package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// Chunker splits pages into sentence-aligned chunks.
// Chunks never span pages; every sentence of a page belongs to exactly one chunk.
type Chunker interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Split chunks every page in order. Each chunk carries its page's metadata
	// and the document-side marker.
	Split(pages []domain.Page) []domain.Chunk
}
