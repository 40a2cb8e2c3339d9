// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: Plain text of one logical page of an uploaded file
//   - Chunk: A sentence-aligned unit of a page, the unit that is embedded
//   - StoredRecord: A chunk as returned by the vector store
//   - ScoredPassage: A reranked passage handed to the answer composer
//   - User, Chat: Credentials and chat transcripts
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
