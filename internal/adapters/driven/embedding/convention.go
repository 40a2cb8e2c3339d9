// Package embedding holds what the embedding adapters share: the textual
// conventions asymmetric models use to tell documents from queries.
package embedding

import "github.com/custodia-labs/docqa/internal/core/domain"

// Side is the role of a text in retrieval.
type Side int

const (
	// SideDocument is a stored chunk.
	SideDocument Side = iota

	// SideQuery is a user question.
	SideQuery
)

// Prefixes used by nomic-embed-text and models trained the same way.
const (
	NomicDocumentPrefix = "search_document: "
	NomicQueryPrefix    = "search_query: "
)

// Apply returns text encoded for side under the convention.
// Unknown conventions leave text unchanged.
func Apply(convention domain.PrefixConvention, side Side, text string) string {
	if convention != domain.PrefixNomic {
		return text
	}
	if side == SideQuery {
		return NomicQueryPrefix + text
	}
	return NomicDocumentPrefix + text
}

// ApplyAll encodes every text for side.
func ApplyAll(convention domain.PrefixConvention, side Side, texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = Apply(convention, side, t)
	}
	return out
}

// ToFloat32 converts a float64 vector as returned by JSON APIs.
func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
