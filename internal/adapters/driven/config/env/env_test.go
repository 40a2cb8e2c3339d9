package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyFrom_Overrides(t *testing.T) {
	s := domain.DefaultAppSettings()

	err := ApplyFrom(&s, mapLookup(map[string]string{
		"DOCQA_ADDR":              ":8080",
		"DOCQA_DEV_MODE":          "true",
		"DOCQA_ALLOWED_ORIGINS":   "http://a.test, http://b.test,",
		"DOCQA_REQUEST_TIMEOUT":   "30s",
		"EMBEDDING_MODEL":         "mxbai-embed-large",
		"DOCQA_LLM_PROVIDER":      "Anthropic",
		"LLM_MODEL":               "claude-3-5-haiku-latest",
		"DOCQA_LLM_API_KEY":       "sk-test",
		"DOCQA_RERANKER_PROVIDER": "tei",
		"DOCQA_RERANKER_URL":      "http://tei:8080",
		"DOCQA_VECTOR_STORE":      "qdrant",
		"CHROMA_DB_HOST":          "vectors",
		"CHROMA_DB_PORT":          "6334",
		"DOCQA_CHUNK_SIZE":        "600",
		"DOCQA_MAX_IN_FLIGHT":     "4",
		"DOCQA_VERBOSE":           "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", s.Server.Addr)
	assert.True(t, s.Server.DevMode)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, s.Server.RequestTimeout)
	assert.Equal(t, "mxbai-embed-large", s.Embedding.Model)
	assert.Equal(t, domain.AIProviderAnthropic, s.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", s.LLM.Model)
	assert.Equal(t, "sk-test", s.LLM.APIKey)
	assert.Equal(t, domain.RerankerTEI, s.Reranker.Provider)
	assert.Equal(t, "http://tei:8080", s.Reranker.BaseURL)
	assert.Equal(t, domain.VectorStoreQdrant, s.VectorStore.Provider)
	assert.Equal(t, "http://vectors:6334", s.VectorStore.URL)
	assert.Equal(t, 600, s.Retrieval.ChunkSize)
	assert.Equal(t, 4, s.Retrieval.MaxInFlight)
	assert.True(t, s.Verbose)

	// Untouched values keep their defaults.
	assert.Equal(t, 100, s.Retrieval.CandidateK)
	assert.Equal(t, domain.AIProviderOllama, s.Embedding.Provider)
}

func TestApplyFrom_PrefixedNameWins(t *testing.T) {
	s := domain.DefaultAppSettings()
	require.NoError(t, ApplyFrom(&s, mapLookup(map[string]string{
		"LLM_MODEL":       "from-original",
		"DOCQA_LLM_MODEL": "from-docqa",
	})))
	assert.Equal(t, "from-docqa", s.LLM.Model)
}

func TestApplyFrom_EmptyValuesIgnored(t *testing.T) {
	s := domain.DefaultAppSettings()
	require.NoError(t, ApplyFrom(&s, mapLookup(map[string]string{
		"DOCQA_ADDR":      "  ",
		"EMBEDDING_MODEL": "",
	})))
	assert.Equal(t, ":5000", s.Server.Addr)
	assert.Equal(t, "nomic-embed-text", s.Embedding.Model)
}

func TestApplyFrom_MalformedValues(t *testing.T) {
	s := domain.DefaultAppSettings()
	err := ApplyFrom(&s, mapLookup(map[string]string{
		"DOCQA_CHUNK_SIZE":      "big",
		"DOCQA_DEV_MODE":        "maybe",
		"DOCQA_LLM_PROVIDER":    "skynet",
		"DOCQA_REQUEST_TIMEOUT": "soon",
		"DOCQA_CONTEXT_K":       "7",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCQA_CHUNK_SIZE")
	assert.Contains(t, err.Error(), "DOCQA_DEV_MODE")
	assert.Contains(t, err.Error(), "skynet")
	assert.Contains(t, err.Error(), "DOCQA_REQUEST_TIMEOUT")

	// Valid values are still applied and invalid ones leave defaults.
	assert.Equal(t, 7, s.Retrieval.ContextK)
	assert.Equal(t, 1200, s.Retrieval.ChunkSize)
	assert.Equal(t, domain.AIProviderOllama, s.LLM.Provider)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCQA_TEST_FROM_FILE=file\nDOCQA_TEST_PRESET=file\n"), 0600))

	t.Setenv("DOCQA_TEST_PRESET", "process")
	t.Setenv("DOCQA_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("DOCQA_TEST_FROM_FILE"))

	require.NoError(t, Load(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "file", os.Getenv("DOCQA_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("DOCQA_TEST_PRESET"))
}

func TestApply_ReadsProcessEnv(t *testing.T) {
	t.Setenv("DOCQA_CONTEXT_K", "3")
	s := domain.DefaultAppSettings()
	require.NoError(t, Apply(&s))
	assert.Equal(t, 3, s.Retrieval.ContextK)
}
