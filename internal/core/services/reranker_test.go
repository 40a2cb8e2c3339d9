package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestReranker_OrdersBestFirst(t *testing.T) {
	enc := &lengthEncoder{}
	r := NewReranker(enc, 4)

	got, err := r.Rerank(context.Background(), "q", []string{"aa", "aaaa", "a", "aaa"}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"aaaa", "aaa", "aa"}, texts(got))
	assert.Equal(t, 4.0, got[0].Score)
	assert.EqualValues(t, 4, enc.calls.Load(), "every candidate is scored")
}

func TestReranker_TiesKeepCandidateOrder(t *testing.T) {
	enc := &lengthEncoder{scores: map[string]float64{"first": 1, "second": 1, "third": 1, "best": 2}}
	got, err := NewReranker(enc, 2).Rerank(context.Background(), "q", []string{"first", "second", "best", "third"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"best", "first", "second", "third"}, texts(got))
}

func TestReranker_TopKBounds(t *testing.T) {
	r := NewReranker(&lengthEncoder{}, 0)

	got, err := r.Rerank(context.Background(), "q", []string{"a", "bb"}, 5)
	require.NoError(t, err)
	assert.Len(t, got, 2, "topK larger than candidates returns them all")

	got, err = r.Rerank(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Rerank(context.Background(), "q", []string{"a"}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReranker_ScoreError(t *testing.T) {
	boom := errors.New("model offline")
	_, err := NewReranker(&lengthEncoder{err: boom}, 2).Rerank(context.Background(), "q", []string{"a", "b"}, 1)
	assert.ErrorIs(t, err, domain.ErrRerank)
	assert.ErrorIs(t, err, boom)
}

func TestReranker_BatchEncoder(t *testing.T) {
	enc := &batchEncoder{}
	got, err := NewReranker(enc, 1).Rerank(context.Background(), "q", []string{"a", "ccc", "bb"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, enc.batchCalls)
	assert.Equal(t, []string{"ccc", "bb"}, texts(got))

	enc = &batchEncoder{truncate: true}
	_, err = NewReranker(enc, 1).Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	assert.ErrorIs(t, err, domain.ErrRerank)
}

func texts(passages []domain.ScoredPassage) []string {
	out := make([]string, len(passages))
	for i, p := range passages {
		out[i] = p.Text
	}
	return out
}
