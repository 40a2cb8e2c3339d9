package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	answer   *domain.Answer
	docs     []domain.DocumentRef
	removed  []string
	question string
	err      error
}

func (m *mockRetrievalService) Ingest(_ context.Context, _ []domain.FileUpload) (*domain.IngestResult, error) {
	return &domain.IngestResult{}, m.err
}

func (m *mockRetrievalService) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockRetrievalService) ListDocuments(_ context.Context) ([]domain.DocumentRef, error) {
	return m.docs, m.err
}

func (m *mockRetrievalService) RemoveDocument(_ context.Context, filename string) error {
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, filename)
	return nil
}

func (m *mockRetrievalService) ClearAll(_ context.Context) error {
	return m.err
}
