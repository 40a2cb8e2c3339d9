package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedCalls   int
	llmCalls     int
}

func (m *mockAIValidator) ValidateEmbedding(*domain.EmbeddingSettings) error {
	m.embedCalls++
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(*domain.LLMSettings) error {
	m.llmCalls++
	return m.llmErr
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":     "openai",
		"embedding.model":        "text-embedding-3-large",
		"embedding.api_key":      "sk-1",
		"llm.context_window":     int64(4096),
		"server.dev_mode":        true,
		"server.allowed_origins": []any{"http://localhost:3000"},
		"server.request_timeout": "90s",
		"retrieval.context_k":    int64(8),
		"vector_store.provider":  "qdrant",
		"vector_store.url":       "http://qdrant:6333",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "sk-1", settings.Embedding.APIKey)
	assert.Equal(t, 4096, settings.LLM.ContextWindow)
	assert.True(t, settings.Server.DevMode)
	assert.Equal(t, []string{"http://localhost:3000"}, settings.Server.AllowedOrigins)
	assert.Equal(t, 90*time.Second, settings.Server.RequestTimeout)
	assert.Equal(t, 8, settings.Retrieval.ContextK)
	assert.Equal(t, domain.VectorStoreQdrant, settings.VectorStore.Provider)
	assert.Equal(t, "http://qdrant:6333", settings.VectorStore.URL)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"llm.provider": "skynet"})
	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
}

func TestSettingsService_Get_BadTimeout(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"server.request_timeout": "soon"})
	_, err := NewSettingsService(store, nil).Get()
	assert.ErrorContains(t, err, "server.request_timeout")
}

func TestSettingsService_Overlay(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(map[string]any{"llm.model": "from-file"}), nil)
	service.SetOverlay(func(s *domain.AppSettings) error {
		s.LLM.Model = "from-env"
		return nil
	})

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.LLM.Model)

	service.SetOverlay(func(*domain.AppSettings) error { return errors.New("bad env") })
	_, err = service.Get()
	assert.ErrorContains(t, err, "bad env")
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewSettingsService(store, nil)

	want := domain.DefaultAppSettings()
	want.Server.Addr = ":8080"
	want.Server.RequestTimeout = 30 * time.Second
	want.LLM.Provider = domain.AIProviderAnthropic
	want.LLM.APIKey = "sk-ant"
	want.Reranker.Provider = domain.RerankerTEI
	want.Reranker.BaseURL = "http://tei:8080"
	want.Retrieval.MaxInFlight = 4
	want.DataDir = "/var/lib/docqa"
	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_SaveSkipsEmptySecrets(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"llm.api_key": "kept"})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	settings.LLM.APIKey = ""
	require.NoError(t, service.Save(settings))

	assert.Equal(t, "kept", store.GetString("llm.api_key"))
	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	t.Run("openai with default model", func(t *testing.T) {
		store := memory.NewConfigStore(nil)
		service := NewSettingsService(store, nil)

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-1"))
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
		assert.Empty(t, settings.Embedding.BaseURL)
		assert.Equal(t, 1536, settings.VectorStore.Dimensions)
	})

	t.Run("ollama keeps base url", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(nil), nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "mxbai-embed-large", ""))
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
		assert.Equal(t, 1024, settings.VectorStore.Dimensions)
	})

	t.Run("rejections", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(nil), nil)
		assert.Error(t, service.SetEmbeddingProvider("bogus", "", ""))
		assert.ErrorContains(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "k"), "does not support embeddings")
		assert.ErrorContains(t, service.SetEmbeddingProvider(domain.AIProviderGemini, "", ""), "API key required")
	})
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderDummy, "", ""))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "dummy", settings.LLM.Model)

	assert.Error(t, service.SetLLMProvider("bogus", "", ""))
	assert.ErrorContains(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""), "API key required")
}

func TestSettingsService_HostedProvidersKeepEmptyBaseURL(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil), nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-1"))
	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", "sk-2"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Empty(t, settings.LLM.BaseURL)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
	assert.Empty(t, settings.Embedding.BaseURL)

	t.Run("stored proxy url is kept", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{
			"llm.provider": "openai",
			"llm.base_url": "https://proxy.internal/v1",
		})
		settings, err := NewSettingsService(store, nil).Get()
		require.NoError(t, err)
		assert.Equal(t, "https://proxy.internal/v1", settings.LLM.BaseURL)
	})

	t.Run("unset url defaults for ollama", func(t *testing.T) {
		settings, err := NewSettingsService(memory.NewConfigStore(nil), nil).Get()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
		assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
	})
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewSettingsService(memory.NewConfigStore(nil), nil).Validate())
	})

	tests := []struct {
		name    string
		values  map[string]any
		wantMsg string
	}{
		{name: "missing api key", values: map[string]any{"llm.provider": "openai"}, wantMsg: "LLM provider"},
		{name: "embedding-less provider", values: map[string]any{"embedding.provider": "dummy"}, wantMsg: "embedding provider"},
		{name: "qdrant without url", values: map[string]any{"vector_store.provider": "qdrant"}, wantMsg: "vector_store.url"},
		{name: "unknown store", values: map[string]any{"vector_store.provider": "pinecone"}, wantMsg: "unknown vector store"},
		{name: "unknown reranker", values: map[string]any{"reranker.provider": "cohere"}, wantMsg: "unknown reranker"},
		{name: "negative size", values: map[string]any{"retrieval.chunk_size": -5}, wantMsg: "must be positive"},
		{name: "context above candidates", values: map[string]any{"retrieval.context_k": 200}, wantMsg: "exceeds candidate_k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSettingsService(memory.NewConfigStore(tt.values), nil).Validate()
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestSettingsService_ValidatePingsProviders(t *testing.T) {
	validator := &mockAIValidator{}
	service := NewSettingsService(memory.NewConfigStore(nil), validator)

	require.NoError(t, service.Validate())
	assert.Equal(t, 1, validator.embedCalls)
	assert.Equal(t, 1, validator.llmCalls)

	validator.llmErr = errors.New("model not pulled")
	assert.ErrorContains(t, service.Validate(), "llm: model not pulled")

	validator.embeddingErr = errors.New("unreachable")
	assert.ErrorContains(t, service.Validate(), "embedding: unreachable")

	bad := NewSettingsService(memory.NewConfigStore(map[string]any{"reranker.provider": "x"}), &mockAIValidator{})
	require.Error(t, bad.Validate())
}

func TestSettingsService_ChunkerConfig(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"retrieval.chunk_size": 800, "retrieval.carry_over": true})
	cfg := NewSettingsService(store, nil).ChunkerConfig()
	assert.Equal(t, map[string]any{"chunk_size": 800, "carry_over": true}, cfg)
}
