// Package lexical provides a deterministic token-overlap relevance scorer.
// It stands in for a neural cross-encoder when no scoring server is configured.
package lexical

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.CrossEncoder = (*Scorer)(nil)

// ModelName is reported by the lexical scorer.
const ModelName = "lexical-ochiai"

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// Scorer computes the Ochiai coefficient between the query and passage word sets:
// |Q ∩ P| / sqrt(|Q| * |P|). Scores fall in [0, 1].
type Scorer struct{}

// New creates a lexical scorer.
func New() *Scorer {
	return &Scorer{}
}

// Score returns the overlap of distinct lower-cased words.
func (s *Scorer) Score(ctx context.Context, query, passage string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	q := tokenSet(query)
	p := tokenSet(passage)
	if len(q) == 0 || len(p) == 0 {
		return 0, nil
	}

	inter := 0
	for t := range q {
		if _, ok := p[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(q))*float64(len(p))), nil
}

// ModelName returns the scorer name.
func (s *Scorer) ModelName() string {
	return ModelName
}

func tokenSet(text string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
