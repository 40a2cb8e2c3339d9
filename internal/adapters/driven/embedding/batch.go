package embedding

import (
	"context"
	"fmt"
)

// BatchFunc embeds one request's worth of texts.
type BatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// InBatches calls embed on consecutive slices of at most size texts and
// concatenates the results. Every call must return one vector per text.
func InBatches(ctx context.Context, texts []string, size int, embed BatchFunc) ([][]float32, error) {
	if size <= 0 {
		size = len(texts)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		vecs, err := embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embed texts %d-%d: got %d vectors for %d texts", start, end-1, len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}
