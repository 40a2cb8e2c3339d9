package services

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Reranker orders candidate passages by cross-encoder relevance.
type Reranker struct {
	encoder     driven.CrossEncoder
	concurrency int
}

// NewReranker creates a reranker. Concurrency bounds parallel Score calls;
// zero or less means GOMAXPROCS.
func NewReranker(encoder driven.CrossEncoder, concurrency int) *Reranker {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Reranker{encoder: encoder, concurrency: concurrency}
}

// Rerank scores every passage against query and returns the best topK,
// highest score first. Equal scores keep their candidate order.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []string, topK int) ([]domain.ScoredPassage, error) {
	if len(passages) == 0 || topK <= 0 {
		return []domain.ScoredPassage{}, nil
	}

	scores, err := r.score(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerank, err)
	}

	scored := make([]domain.ScoredPassage, len(passages))
	for i, p := range passages {
		scored[i] = domain.ScoredPassage{Text: p, Score: scores[i]}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	logger.Debug("rerank: %d candidates -> %d, best %.4f", len(passages), len(scored), scored[0].Score)
	return scored, nil
}

func (r *Reranker) score(ctx context.Context, query string, passages []string) ([]float64, error) {
	if batch, ok := r.encoder.(driven.BatchCrossEncoder); ok {
		scores, err := batch.ScoreBatch(ctx, query, passages)
		if err != nil {
			return nil, err
		}
		if len(scores) != len(passages) {
			return nil, fmt.Errorf("encoder returned %d scores for %d passages", len(scores), len(passages))
		}
		return scores, nil
	}

	scores := make([]float64, len(passages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, p := range passages {
		g.Go(func() error {
			s, err := r.encoder.Score(ctx, query, p)
			if err != nil {
				return err
			}
			scores[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
