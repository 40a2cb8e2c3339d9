package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		passage string
		want    float64
	}{
		{"identical", "refund policy", "Refund policy", 1},
		{"disjoint", "refund policy", "shipping times", 0},
		{"half", "refund window", "refund", 1 / 1.4142135623730951},
		{"empty query", "", "anything", 0},
		{"empty passage", "anything", "  ", 0},
		{"duplicates ignored", "tax tax", "tax", 1},
	}
	s := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Score(t.Context(), tt.query, tt.passage)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := New()
	a, err := s.Score(t.Context(), "how do transfers work", "Transfers work when fares qualify.")
	require.NoError(t, err)
	b, err := s.Score(t.Context(), "how do transfers work", "Transfers work when fares qualify.")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Greater(t, a, 0.0)
}

func TestScore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := New().Score(ctx, "a", "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ModelName, New().ModelName())
}
