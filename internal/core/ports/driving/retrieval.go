package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// RetrievalService is the ingestion and question-answering pipeline.
type RetrievalService interface {
	// Ingest loads, chunks, embeds and stores files as one batch.
	// Nothing is stored when any step fails.
	Ingest(ctx context.Context, files []domain.FileUpload) (*domain.IngestResult, error)

	// Answer retrieves and reranks passages for question and generates an answer.
	Answer(ctx context.Context, question string) (*domain.Answer, error)

	// ListDocuments returns each ingested (filename, uploadDate) pair once.
	ListDocuments(ctx context.Context) ([]domain.DocumentRef, error)

	// RemoveDocument deletes every chunk of filename. A missing filename is a no-op.
	RemoveDocument(ctx context.Context, filename string) error

	// ClearAll deletes every stored chunk. Only allowed in development mode.
	ClearAll(ctx context.Context) error
}
