package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Normalisers ---

// fakeNormaliser splits content on form feeds.
type fakeNormaliser struct {
	exts []string
	err  error
}

func (n *fakeNormaliser) Name() string                  { return "fake" }
func (n *fakeNormaliser) SupportedExtensions() []string { return n.exts }

func (n *fakeNormaliser) Normalise(_ context.Context, _ string, content []byte) ([]string, error) {
	if n.err != nil {
		return nil, n.err
	}
	return strings.Split(string(content), "\f"), nil
}

// fakeRegistry maps extensions to normalisers.
type fakeRegistry map[string]driven.Normaliser

func (r fakeRegistry) Register(n driven.Normaliser) {
	for _, ext := range n.SupportedExtensions() {
		r[ext] = n
	}
}

func (r fakeRegistry) Lookup(filename string) (driven.Normaliser, bool) {
	n, ok := r[strings.ToLower(filepath.Ext(filename))]
	return n, ok
}

func (r fakeRegistry) SupportedExtensions() []string {
	out := make([]string, 0, len(r))
	for ext := range r {
		out = append(out, ext)
	}
	return out
}

func newTextRegistry() fakeRegistry {
	r := fakeRegistry{}
	r.Register(&fakeNormaliser{exts: []string{".txt"}})
	return r
}

// --- Chunker ---

// pageChunker makes one chunk per non-empty page.
type pageChunker struct{}

func (pageChunker) Name() string { return "page" }

func (pageChunker) Split(pages []domain.Page) []domain.Chunk {
	var out []domain.Chunk
	for _, p := range pages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		out = append(out, domain.Chunk{
			ID:           p.Filename + "#" + p.Content,
			Text:         p.Content,
			DocumentSide: true,
			Metadata:     domain.ChunkMetadata{Filename: p.Filename, UploadDate: p.UploadDate},
		})
	}
	return out
}

// --- Embedding ---

type fakeEmbedding struct {
	docErr     error
	queryErr   error
	short      bool
	docCalls   atomic.Int32
	queryCalls atomic.Int32
}

func (e *fakeEmbedding) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.docCalls.Add(1)
	if e.docErr != nil {
		return nil, e.docErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, float32(i)}
	}
	if e.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *fakeEmbedding) EmbedQuery(ctx context.Context, _ string) ([]float32, error) {
	e.queryCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	return []float32{1, 0}, nil
}

func (e *fakeEmbedding) Dimensions() int            { return 2 }
func (e *fakeEmbedding) ModelName() string          { return "fake-embed" }
func (e *fakeEmbedding) Ping(context.Context) error { return nil }
func (e *fakeEmbedding) Close() error               { return nil }

// --- Vector store ---

// fakeStore keeps records in insertion order; Search returns them in order.
type fakeStore struct {
	mu        sync.Mutex
	records   []domain.StoredRecord
	upserts   int
	searchK   int
	deleted   []string
	filters   []map[string]string
	upsertErr error
	searchErr error
	listErr   error
	deleteErr error
}

func (s *fakeStore) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float32) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	if len(chunks) != len(vectors) {
		return nil, errors.New("length mismatch")
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		s.records = append(s.records, domain.StoredRecord{ID: c.ID, Text: c.Text, Metadata: c.StoreMetadata()})
	}
	return ids, nil
}

func (s *fakeStore) Search(_ context.Context, _ []float32, k int) ([]domain.StoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchK = k
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if k > len(s.records) {
		k = len(s.records)
	}
	return append([]domain.StoredRecord(nil), s.records[:k]...), nil
}

func (s *fakeStore) ListAll(context.Context) ([]domain.StoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.StoredRecord(nil), s.records...), nil
}

func (s *fakeStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, ids...)
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *fakeStore) DeleteWhere(_ context.Context, filter map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.filters = append(s.filters, filter)
	kept := s.records[:0]
	for _, r := range s.records {
		match := true
		for k, v := range filter {
			if r.Metadata[k] != v {
				match = false
			}
		}
		if !match {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *fakeStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *fakeStore) Close() error { return nil }

// --- Cross encoder ---

// lengthEncoder scores passages by their length, or by a fixed table.
type lengthEncoder struct {
	scores map[string]float64
	err    error
	calls  atomic.Int32
}

func (e *lengthEncoder) Score(_ context.Context, _, passage string) (float64, error) {
	e.calls.Add(1)
	if e.err != nil {
		return 0, e.err
	}
	if s, ok := e.scores[passage]; ok {
		return s, nil
	}
	return float64(len(passage)), nil
}

func (e *lengthEncoder) ModelName() string { return "length" }

// batchEncoder implements driven.BatchCrossEncoder.
type batchEncoder struct {
	lengthEncoder
	batchCalls int
	truncate   bool
}

func (e *batchEncoder) ScoreBatch(ctx context.Context, query string, passages []string) ([]float64, error) {
	e.batchCalls++
	out := make([]float64, 0, len(passages))
	for _, p := range passages {
		s, err := e.lengthEncoder.Score(ctx, query, p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if e.truncate {
		out = out[:len(out)-1]
	}
	return out, nil
}

// --- LLM ---

type fakeLLM struct {
	mu     sync.Mutex
	answer string
	err    error
	prompt string
	opts   driven.GenerateOptions
	calls  int
	block  chan struct{}
}

func (l *fakeLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if l.block != nil {
		select {
		case <-l.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.prompt = prompt
	l.opts = opts
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

func (l *fakeLLM) ModelName() string          { return "fake-llm" }
func (l *fakeLLM) Ping(context.Context) error { return nil }
func (l *fakeLLM) Close() error               { return nil }

// --- Prompts ---

type fakePrompts struct {
	prompts map[string]string
	err     error
}

func (p *fakePrompts) Load(name string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.prompts[name], nil
}

func (p *fakePrompts) Reload() {}

// --- Relational stores ---

type fakeUsers struct {
	users map[string]domain.User
	err   error
	saved []domain.User
}

func (u *fakeUsers) SaveUser(_ context.Context, user *domain.User) error {
	if u.err != nil {
		return u.err
	}
	u.saved = append(u.saved, *user)
	if u.users == nil {
		u.users = map[string]domain.User{}
	}
	u.users[user.Email] = *user
	return nil
}

func (u *fakeUsers) GetUser(_ context.Context, email string) (*domain.User, error) {
	if u.err != nil {
		return nil, u.err
	}
	user, ok := u.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}
