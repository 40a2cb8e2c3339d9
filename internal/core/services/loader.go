package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Loader turns uploaded files into pages via the registered normalisers.
type Loader struct {
	registry driven.NormaliserRegistry
	now      func() time.Time
}

// NewLoader creates a loader over registry.
func NewLoader(registry driven.NormaliserRegistry) *Loader {
	return &Loader{
		registry: registry,
		now:      time.Now,
	}
}

// Load reads every file into pages. The whole batch is rejected when any
// file has an unsupported extension or fails to read. All pages share one
// upload timestamp, taken when Load starts.
func (l *Loader) Load(ctx context.Context, files []domain.FileUpload) ([]domain.Page, error) {
	uploadDate := l.now().Truncate(time.Second)

	normalisers := make([]driven.Normaliser, len(files))
	for i, f := range files {
		n, ok := l.registry.Lookup(f.Filename)
		if !ok {
			return nil, &domain.UnsupportedFormatError{Filename: f.Filename}
		}
		normalisers[i] = n
	}

	var pages []domain.Page
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		texts, err := normalisers[i].Normalise(ctx, f.Filename, f.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInvalidInput, f.Filename, err)
		}
		logger.Debug("loaded %s with %s: %d pages", f.Filename, normalisers[i].Name(), len(texts))

		for _, text := range texts {
			pages = append(pages, domain.Page{
				Content:    text,
				Filename:   f.Filename,
				UploadDate: uploadDate,
			})
		}
	}

	return pages, nil
}
