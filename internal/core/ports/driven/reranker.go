package driven

import "context"

// CrossEncoder scores how relevant a passage is to a query by evaluating
// both jointly. Scores are comparable only within one query.
// Score must be a pure function of (query, passage) and safe for concurrent use.
type CrossEncoder interface {
	// Score returns the relevance of passage to query; higher is more relevant.
	Score(ctx context.Context, query, passage string) (float64, error)

	// ModelName returns the scoring model name.
	ModelName() string
}

// BatchCrossEncoder is an optional interface for encoders that score many
// passages in one request. The result has one score per passage, in order.
type BatchCrossEncoder interface {
	CrossEncoder
	ScoreBatch(ctx context.Context, query string, passages []string) ([]float64, error)
}
