package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type pipelineFixture struct {
	embedding *fakeEmbedding
	store     *fakeStore
	encoder   *lengthEncoder
	llm       *fakeLLM
	pipeline  *Pipeline
}

func newPipelineFixture(cfg PipelineConfig) *pipelineFixture {
	f := &pipelineFixture{
		embedding: &fakeEmbedding{},
		store:     &fakeStore{},
		encoder:   &lengthEncoder{},
		llm:       &fakeLLM{answer: "the answer"},
	}
	f.pipeline = NewPipeline(
		NewLoader(newTextRegistry()),
		pageChunker{},
		f.embedding,
		f.store,
		NewReranker(f.encoder, 2),
		NewComposer(f.llm, nil, 2000),
		cfg,
	)
	return f
}

func (f *pipelineFixture) ingest(t *testing.T, files ...domain.FileUpload) *domain.IngestResult {
	t.Helper()
	res, err := f.pipeline.Ingest(context.Background(), files)
	require.NoError(t, err)
	return res
}

func TestPipeline_Ingest(t *testing.T) {
	f := newPipelineFixture(PipelineConfig{})

	res := f.ingest(t,
		domain.FileUpload{Filename: "a.txt", Content: []byte("alpha\fbeta")},
		domain.FileUpload{Filename: "b.txt", Content: []byte("gamma")},
	)

	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, []string{"a.txt#alpha", "a.txt#beta", "b.txt#gamma"}, res.IDs)
	assert.Equal(t, 1, f.store.upserts, "one upsert per batch")
	assert.EqualValues(t, 1, f.embedding.docCalls.Load())

	for _, r := range f.store.records {
		assert.True(t, r.IsDocumentSide())
	}
}

func TestPipeline_IngestNothingWrittenOnFailure(t *testing.T) {
	t.Run("unsupported file", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		_, err := f.pipeline.Ingest(context.Background(), []domain.FileUpload{
			{Filename: "a.txt", Content: []byte("alpha")},
			{Filename: "b.exe", Content: []byte("x")},
		})
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		assert.Zero(t, f.store.upserts)
		assert.Zero(t, f.embedding.docCalls.Load())
	})

	t.Run("embedding failure", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.embedding.docErr = errors.New("timeout")
		_, err := f.pipeline.Ingest(context.Background(), []domain.FileUpload{{Filename: "a.txt", Content: []byte("alpha")}})
		assert.ErrorIs(t, err, domain.ErrEmbedding)
		assert.Zero(t, f.store.upserts)
	})

	t.Run("vector count mismatch", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.embedding.short = true
		_, err := f.pipeline.Ingest(context.Background(), []domain.FileUpload{{Filename: "a.txt", Content: []byte("alpha\fbeta")}})
		assert.ErrorIs(t, err, domain.ErrEmbedding)
		assert.Zero(t, f.store.upserts)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.store.upsertErr = errors.New("disk full")
		_, err := f.pipeline.Ingest(context.Background(), []domain.FileUpload{{Filename: "a.txt", Content: []byte("alpha")}})
		assert.ErrorIs(t, err, domain.ErrStore)
	})
}

func TestPipeline_IngestBlankFile(t *testing.T) {
	f := newPipelineFixture(PipelineConfig{})
	res := f.ingest(t, domain.FileUpload{Filename: "empty.txt", Content: []byte("  ")})

	assert.Equal(t, 1, res.Pages)
	assert.Zero(t, res.Chunks)
	assert.Empty(t, res.IDs)
	assert.Zero(t, f.store.upserts)
	assert.Zero(t, f.embedding.docCalls.Load())
}

func TestPipeline_Answer(t *testing.T) {
	f := newPipelineFixture(PipelineConfig{CandidateK: 4, ContextK: 2})
	f.ingest(t, domain.FileUpload{Filename: "a.txt", Content: []byte("x\fxxxx\fxx\fxxx\fxxxxx")})

	ans, err := f.pipeline.Answer(context.Background(), "  what?  ")
	require.NoError(t, err)

	assert.Equal(t, "the answer", ans.Text)
	assert.Equal(t, 4, f.store.searchK)
	assert.EqualValues(t, 4, f.encoder.calls.Load(), "only candidates are reranked")
	require.Len(t, ans.Passages, 2)
	assert.Equal(t, "xxxx", ans.Passages[0].Text)
	assert.Equal(t, "xxx", ans.Passages[1].Text)
	assert.Equal(t, "Context: xxxx\n\nxxx\n\nQuestion: what?", f.llm.prompt)
}

func TestPipeline_AnswerDefaults(t *testing.T) {
	f := newPipelineFixture(PipelineConfig{})
	f.ingest(t, domain.FileUpload{Filename: "a.txt", Content: []byte("one")})

	_, err := f.pipeline.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, DefaultCandidateK, f.store.searchK)
}

func TestPipeline_AnswerEmptyStore(t *testing.T) {
	f := newPipelineFixture(PipelineConfig{})

	ans, err := f.pipeline.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, ans.Passages)
	assert.Equal(t, "Context: \n\nQuestion: q", f.llm.prompt)
}

func TestPipeline_AnswerErrors(t *testing.T) {
	t.Run("empty question", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		_, err := f.pipeline.Answer(context.Background(), "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, f.embedding.queryCalls.Load())
	})

	t.Run("query embedding", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.embedding.queryErr = errors.New("down")
		_, err := f.pipeline.Answer(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("search", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.store.searchErr = errors.New("down")
		_, err := f.pipeline.Answer(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrStore)
	})

	t.Run("record without document marker", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.store.records = []domain.StoredRecord{{ID: "raw-1", Text: "t", Metadata: map[string]string{}}}
		_, err := f.pipeline.Answer(context.Background(), "q")
		require.ErrorIs(t, err, domain.ErrMalformedRecord)

		var mr *domain.MalformedRecordError
		require.ErrorAs(t, err, &mr)
		assert.Equal(t, "raw-1", mr.ID)
		assert.Zero(t, f.llm.calls)
	})

	t.Run("rerank", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.ingest(t, domain.FileUpload{Filename: "a.txt", Content: []byte("one")})
		f.encoder.err = errors.New("down")
		_, err := f.pipeline.Answer(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrRerank)
	})

	t.Run("generation", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.llm.err = errors.New("down")
		_, err := f.pipeline.Answer(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrGeneration)
	})
}

func TestPipeline_AnswerInFlightLimit(t *testing.T) {
	f := newPipelineFixture(PipelineConfig{MaxInFlight: 1})
	f.llm.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.pipeline.Answer(context.Background(), "first")
		done <- err
	}()
	require.Eventually(t, func() bool { return f.embedding.queryCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.pipeline.Answer(ctx, "second")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualValues(t, 1, f.embedding.queryCalls.Load(), "queued call never reached the backends")

	close(f.llm.block)
	require.NoError(t, <-done)

	_, err = f.pipeline.Answer(context.Background(), "third")
	assert.NoError(t, err)
}

func TestPipeline_ListDocuments(t *testing.T) {
	f := newPipelineFixture(PipelineConfig{})

	docs, err := f.pipeline.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	f.store.records = []domain.StoredRecord{
		{ID: "1", Metadata: map[string]string{domain.MetaFilename: "b.txt", domain.MetaUploadDate: "01-01-2024 10:00:00"}},
		{ID: "2", Metadata: map[string]string{domain.MetaFilename: "a.txt", domain.MetaUploadDate: "02-01-2024 10:00:00"}},
		{ID: "3", Metadata: map[string]string{domain.MetaFilename: "b.txt", domain.MetaUploadDate: "01-01-2024 10:00:00"}},
		{ID: "4", Metadata: map[string]string{domain.MetaFilename: "a.txt", domain.MetaUploadDate: "01-01-2024 10:00:00"}},
	}
	docs, err = f.pipeline.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentRef{
		{Filename: "a.txt", UploadDate: "01-01-2024 10:00:00"},
		{Filename: "a.txt", UploadDate: "02-01-2024 10:00:00"},
		{Filename: "b.txt", UploadDate: "01-01-2024 10:00:00"},
	}, docs)

	f.store.listErr = errors.New("down")
	_, err = f.pipeline.ListDocuments(context.Background())
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestPipeline_RemoveDocument(t *testing.T) {
	f := newPipelineFixture(PipelineConfig{})
	f.ingest(t,
		domain.FileUpload{Filename: "a.txt", Content: []byte("alpha\fbeta")},
		domain.FileUpload{Filename: "b.txt", Content: []byte("gamma")},
	)

	require.NoError(t, f.pipeline.RemoveDocument(context.Background(), "a.txt"))
	assert.Equal(t, []map[string]string{{domain.MetaFilename: "a.txt"}}, f.store.filters)
	require.Len(t, f.store.records, 1)
	assert.Equal(t, "b.txt#gamma", f.store.records[0].ID)

	assert.NoError(t, f.pipeline.RemoveDocument(context.Background(), "missing.txt"))
	assert.ErrorIs(t, f.pipeline.RemoveDocument(context.Background(), ""), domain.ErrInvalidInput)

	f.store.deleteErr = errors.New("down")
	assert.ErrorIs(t, f.pipeline.RemoveDocument(context.Background(), "b.txt"), domain.ErrStore)
}

func TestPipeline_ClearAll(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{})
		f.ingest(t, domain.FileUpload{Filename: "a.txt", Content: []byte("alpha")})

		assert.ErrorIs(t, f.pipeline.ClearAll(context.Background()), domain.ErrClearDisabled)
		assert.Len(t, f.store.records, 1)
	})

	t.Run("enabled", func(t *testing.T) {
		f := newPipelineFixture(PipelineConfig{AllowClear: true})
		require.NoError(t, f.pipeline.ClearAll(context.Background()), "empty store")
		assert.Empty(t, f.store.deleted)

		f.ingest(t, domain.FileUpload{Filename: "a.txt", Content: []byte("alpha\fbeta")})
		require.NoError(t, f.pipeline.ClearAll(context.Background()))
		assert.Empty(t, f.store.records)
		assert.ElementsMatch(t, []string{"a.txt#alpha", "a.txt#beta"}, f.store.deleted)
	})
}
