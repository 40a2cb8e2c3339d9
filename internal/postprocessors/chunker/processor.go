// Package chunker provides a sentence-bounded text chunking processor.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultChunkSize is the number of characters a chunk must exceed before it closes.
const DefaultChunkSize = 1200

// Splitter breaks text into ordered sentences.
type Splitter interface {
	Split(text string) []string
}

// SplitterFunc adapts a function to Splitter.
type SplitterFunc func(text string) []string

// Split calls f.
func (f SplitterFunc) Split(text string) []string { return f(text) }

// punktSplitter splits with the English Punkt model.
type punktSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSplitter returns a Splitter backed by the pre-trained English Punkt model.
func NewPunktSplitter() (Splitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &punktSplitter{tokenizer: tokenizer}, nil
}

func (s *punktSplitter) Split(text string) []string {
	tokens := s.tokenizer.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if sentence := strings.TrimSpace(tok.Text); sentence != "" {
			out = append(out, sentence)
		}
	}
	return out
}

// Processor splits pages into chunks along sentence boundaries.
// It implements the driven.Chunker interface.
//
// Sentences are accumulated per page. As soon as the accumulated text is
// longer than the chunk size the chunk is closed, so a closed chunk exceeds
// the size only by the sentence that crossed it. A sentence longer than the
// chunk size forms a chunk on its own and is never split.
type Processor struct {
	chunkSize int
	carryOver bool
	splitter  Splitter
	newID     func() string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithSplitter replaces the sentence splitter.
func WithSplitter(s Splitter) Option {
	return func(p *Processor) {
		if s != nil {
			p.splitter = s
		}
	}
}

// WithCarryOver makes the sentence that closed a chunk also open the next one.
// Chunks then overlap by one sentence and each sentence is no longer stored exactly once.
func WithCarryOver(enabled bool) Option {
	return func(p *Processor) {
		p.carryOver = enabled
	}
}

// WithIDFunc sets the chunk id generator.
func WithIDFunc(fn func() string) Option {
	return func(p *Processor) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New creates a new chunker processor with the given options.
// Without WithSplitter the English Punkt splitter is used.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		newID:     func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.splitter == nil {
		s, err := NewPunktSplitter()
		if err != nil {
			return nil, err
		}
		p.splitter = s
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Split chunks every page in order. Empty pages produce no chunks.
func (p *Processor) Split(pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, page := range pages {
		chunks = append(chunks, p.splitPage(page)...)
	}
	return chunks
}

func (p *Processor) splitPage(page domain.Page) []domain.Chunk {
	if strings.TrimSpace(page.Content) == "" {
		return nil
	}

	meta := domain.ChunkMetadata{Filename: page.Filename, UploadDate: page.UploadDate}

	var (
		chunks []domain.Chunk
		acc    strings.Builder
	)

	closeChunk := func() {
		chunks = append(chunks, domain.Chunk{
			ID:           p.newID(),
			Text:         acc.String(),
			DocumentSide: true,
			Position:     len(chunks),
			Metadata:     meta,
		})
		acc.Reset()
	}

	for _, sentence := range p.splitter.Split(page.Content) {
		if acc.Len() > 0 {
			acc.WriteByte(' ')
		}
		acc.WriteString(sentence)

		if utf8.RuneCountInString(acc.String()) > p.chunkSize {
			closeChunk()
			if p.carryOver {
				acc.WriteString(sentence)
			}
		}
	}

	if acc.Len() > 0 {
		closeChunk()
	}

	return chunks
}
