package domain

import (
	"strconv"
	"time"
)

// UploadDateLayout is the wire format of upload timestamps (DD-MM-YYYY HH:MM:SS).
const UploadDateLayout = "02-01-2006 15:04:05"

// Metadata keys written alongside every stored chunk.
const (
	MetaFilename   = "filename"
	MetaUploadDate = "uploadDate"
	MetaSide       = "side"
	MetaPosition   = "position"

	// SideDocument is the MetaSide value of chunks produced by the chunker.
	SideDocument = "document"
)

// FileUpload is a single uploaded file awaiting ingestion.
type FileUpload struct {
	// Filename is the client-supplied name, extension included.
	Filename string

	// Content is the raw file content.
	Content []byte
}

// Page is the plain text of one logical page of an uploaded file.
// All pages of one ingestion batch share UploadDate.
type Page struct {
	// Content is the page text.
	Content string

	// Filename identifies the source file.
	Filename string

	// UploadDate is the batch timestamp.
	UploadDate time.Time
}

// ChunkMetadata is the provenance carried by every chunk.
type ChunkMetadata struct {
	Filename   string
	UploadDate time.Time
}

// FormattedUploadDate returns UploadDate in UploadDateLayout.
func (m ChunkMetadata) FormattedUploadDate() string {
	return m.UploadDate.Format(UploadDateLayout)
}

// Chunk is a sentence-aligned span of page text.
type Chunk struct {
	// ID is assigned when the chunk is created.
	ID string

	// Text is the chunk content without any embedding-model convention applied.
	Text string

	// DocumentSide marks text embedded under the document-side convention.
	// Every chunk built by the chunker has it set.
	DocumentSide bool

	// Position is the ordinal of the chunk within its page.
	Position int

	// Metadata is the originating page's provenance.
	Metadata ChunkMetadata
}

// StoreMetadata returns the flat metadata map persisted with the chunk.
func (c Chunk) StoreMetadata() map[string]string {
	m := map[string]string{
		MetaFilename:   c.Metadata.Filename,
		MetaUploadDate: c.Metadata.FormattedUploadDate(),
		MetaPosition:   strconv.Itoa(c.Position),
	}
	if c.DocumentSide {
		m[MetaSide] = SideDocument
	}
	return m
}

// StoredRecord is a chunk as held by the vector store.
type StoredRecord struct {
	ID       string
	Text     string
	Metadata map[string]string

	// Distance from the query vector; zero for listings.
	Distance float64
}

// IsDocumentSide reports whether the record carries the document-side marker.
func (r StoredRecord) IsDocumentSide() bool {
	return r.Metadata[MetaSide] == SideDocument
}

// DocumentRef identifies one ingested document in listings.
type DocumentRef struct {
	Filename   string
	UploadDate string
}

// ScoredPassage is a passage with its cross-encoder relevance score.
type ScoredPassage struct {
	Text  string
	Score float64
}

// Answer is the result of a question answered over the store.
type Answer struct {
	// Text is the raw generated answer.
	Text string

	// Passages are the reranked passages the answer was composed from, best first.
	Passages []ScoredPassage
}

// IngestResult summarises one ingestion batch.
type IngestResult struct {
	Pages  int
	Chunks int
	IDs    []string
}
