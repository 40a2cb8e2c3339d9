package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.RetrievalService = (*Pipeline)(nil)

// Default retrieval sizes.
const (
	DefaultCandidateK = 100
	DefaultContextK   = 5
)

// PipelineConfig holds retrieval parameters.
type PipelineConfig struct {
	// CandidateK is the coarse vector search size.
	CandidateK int

	// ContextK is the number of reranked passages given to the generator.
	ContextK int

	// MaxInFlight bounds concurrent Answer calls; zero means unbounded.
	MaxInFlight int

	// AllowClear permits ClearAll.
	AllowClear bool
}

// Pipeline runs ingestion and question answering over the vector store.
type Pipeline struct {
	loader    *Loader
	chunker   driven.Chunker
	embedding driven.EmbeddingService
	store     driven.VectorStore
	reranker  *Reranker
	composer  *Composer
	cfg       PipelineConfig
	inFlight  *semaphore.Weighted
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(
	loader *Loader,
	chunker driven.Chunker,
	embedding driven.EmbeddingService,
	store driven.VectorStore,
	reranker *Reranker,
	composer *Composer,
	cfg PipelineConfig,
) *Pipeline {
	if cfg.CandidateK <= 0 {
		cfg.CandidateK = DefaultCandidateK
	}
	if cfg.ContextK <= 0 {
		cfg.ContextK = DefaultContextK
	}

	p := &Pipeline{
		loader:    loader,
		chunker:   chunker,
		embedding: embedding,
		store:     store,
		reranker:  reranker,
		composer:  composer,
		cfg:       cfg,
	}
	if cfg.MaxInFlight > 0 {
		p.inFlight = semaphore.NewWeighted(int64(cfg.MaxInFlight))
	}
	return p
}

// Ingest loads, chunks and embeds files, then writes every chunk in one
// upsert. Nothing is written when an earlier step fails.
func (p *Pipeline) Ingest(ctx context.Context, files []domain.FileUpload) (*domain.IngestResult, error) {
	logger.Section("Ingest")
	defer logger.Elapsed("ingest", time.Now())

	pages, err := p.loader.Load(ctx, files)
	if err != nil {
		return nil, err
	}

	chunks := p.chunker.Split(pages)
	logger.Debug("ingest: %d files, %d pages, %d chunks", len(files), len(pages), len(chunks))

	result := &domain.IngestResult{Pages: len(pages), Chunks: len(chunks)}
	if len(chunks) == 0 {
		return result, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedding.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, wrapStage(domain.ErrEmbedding, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(vectors), len(chunks))
	}

	ids, err := p.store.Upsert(ctx, chunks, vectors)
	if err != nil {
		return nil, wrapStage(domain.ErrStore, err)
	}
	result.IDs = ids
	return result, nil
}

// Answer retrieves candidates for question, reranks them and generates an answer.
func (p *Pipeline) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	if p.inFlight != nil {
		if err := p.inFlight.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.inFlight.Release(1)
	}

	logger.Section("Answer")
	defer logger.Elapsed("answer", time.Now())

	vector, err := p.embedding.EmbedQuery(ctx, question)
	if err != nil {
		return nil, wrapStage(domain.ErrEmbedding, err)
	}

	records, err := p.store.Search(ctx, vector, p.cfg.CandidateK)
	if err != nil {
		return nil, wrapStage(domain.ErrStore, err)
	}
	logger.Debug("answer: %d candidates", len(records))

	candidates := make([]string, len(records))
	for i, r := range records {
		if !r.IsDocumentSide() {
			return nil, &domain.MalformedRecordError{ID: r.ID}
		}
		candidates[i] = r.Text
	}

	passages, err := p.reranker.Rerank(ctx, question, candidates, p.cfg.ContextK)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(passages))
	for i, sp := range passages {
		texts[i] = sp.Text
	}
	answer, err := p.composer.Answer(ctx, question, texts)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{Text: answer, Passages: passages}, nil
}

// ListDocuments returns each (filename, uploadDate) pair once, sorted by
// filename then upload date.
func (p *Pipeline) ListDocuments(ctx context.Context) ([]domain.DocumentRef, error) {
	records, err := p.store.ListAll(ctx)
	if err != nil {
		return nil, wrapStage(domain.ErrStore, err)
	}

	seen := make(map[domain.DocumentRef]struct{})
	docs := []domain.DocumentRef{}
	for _, r := range records {
		ref := domain.DocumentRef{
			Filename:   r.Metadata[domain.MetaFilename],
			UploadDate: r.Metadata[domain.MetaUploadDate],
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		docs = append(docs, ref)
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Filename != docs[j].Filename {
			return docs[i].Filename < docs[j].Filename
		}
		return docs[i].UploadDate < docs[j].UploadDate
	})
	return docs, nil
}

// RemoveDocument deletes every chunk of filename. A filename with no chunks
// is not an error.
func (p *Pipeline) RemoveDocument(ctx context.Context, filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if err := p.store.DeleteWhere(ctx, map[string]string{domain.MetaFilename: filename}); err != nil {
		return wrapStage(domain.ErrStore, err)
	}
	logger.Debug("removed chunks of %s", filename)
	return nil
}

// ClearAll deletes every stored chunk. It fails with domain.ErrClearDisabled
// unless the pipeline allows it.
func (p *Pipeline) ClearAll(ctx context.Context) error {
	if !p.cfg.AllowClear {
		return domain.ErrClearDisabled
	}

	records, err := p.store.ListAll(ctx)
	if err != nil {
		return wrapStage(domain.ErrStore, err)
	}
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	if err := p.store.Delete(ctx, ids); err != nil {
		return wrapStage(domain.ErrStore, err)
	}
	logger.Debug("cleared %d chunks", len(ids))
	return nil
}

// wrapStage tags err with the failing stage unless it already matches it.
func wrapStage(stage, err error) error {
	if errors.Is(err, stage) {
		return err
	}
	return fmt.Errorf("%w: %w", stage, err)
}
