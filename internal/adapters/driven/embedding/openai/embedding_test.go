package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newServer(t *testing.T, requests *[]embeddingRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
			return
		}
		if r.URL.Path == "/models" {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req)

		// Answer in reverse order to exercise index ordering.
		type item struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}
		var data []item
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Embedding: []float64{float64(len(req.Input[i]))}, Index: i})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)

	s, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, s.Dimensions())
	assert.Equal(t, domain.PrefixNone, s.prefix)

	s, err = NewEmbeddingService(Config{APIKey: "k", Model: "custom"})
	require.NoError(t, err)
	assert.Equal(t, 1536, s.Dimensions())
}

func TestEmbedDocuments_BatchesAndOrders(t *testing.T) {
	var reqs []embeddingRequest
	s, err := NewEmbeddingService(Config{APIKey: "sk-test", BaseURL: newServer(t, &reqs).URL, BatchSize: 2})
	require.NoError(t, err)

	vecs, err := s.EmbedDocuments(t.Context(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{1}, {2}, {3}}, vecs)
	require.Len(t, reqs, 2)
	assert.Equal(t, []string{"a", "bb"}, reqs[0].Input)
	assert.Equal(t, []string{"ccc"}, reqs[1].Input)
	assert.Equal(t, 1536, reqs[0].Dimensions)
}

func TestEmbed_NomicPrefixThroughCompatibleServer(t *testing.T) {
	var reqs []embeddingRequest
	s, err := NewEmbeddingService(Config{
		APIKey: "sk-test", BaseURL: newServer(t, &reqs).URL,
		Model: "nomic-embed-text", Prefix: domain.PrefixNomic,
	})
	require.NoError(t, err)

	_, err = s.EmbedQuery(t.Context(), "q")
	require.NoError(t, err)
	_, err = s.EmbedDocuments(t.Context(), []string{"d"})
	require.NoError(t, err)

	assert.Equal(t, []string{"search_query: q"}, reqs[0].Input)
	assert.Equal(t, []string{"search_document: d"}, reqs[1].Input)
	assert.Zero(t, reqs[0].Dimensions)
}

func TestEmbed_APIError(t *testing.T) {
	var reqs []embeddingRequest
	s, err := NewEmbeddingService(Config{APIKey: "wrong", BaseURL: newServer(t, &reqs).URL})
	require.NoError(t, err)

	_, err = s.EmbedQuery(t.Context(), "q")
	assert.ErrorContains(t, err, "bad key")
	assert.Error(t, s.Ping(t.Context()))
}

func TestEmbedDocuments_Empty(t *testing.T) {
	s, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	vecs, err := s.EmbedDocuments(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}
