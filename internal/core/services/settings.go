package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyServerAddr       = "server.addr"
	keyServerDevMode    = "server.dev_mode"
	keyServerOrigins    = "server.allowed_origins"
	keyServerTimeout    = "server.request_timeout"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedPrefix      = "embedding.prefix_convention"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMContextWindow = "llm.context_window"
	keyRerankProvider   = "reranker.provider"
	keyRerankModel      = "reranker.model"
	keyRerankBaseURL    = "reranker.base_url"
	keyRerankConc       = "reranker.concurrency"
	keyStoreProvider    = "vector_store.provider"
	keyStorePath        = "vector_store.path"
	keyStoreURL         = "vector_store.url"
	keyStoreAPIKey      = "vector_store.api_key"
	keyStoreCollection  = "vector_store.collection"
	keyStoreDims        = "vector_store.dimensions"
	keyChunkSize        = "retrieval.chunk_size"
	keyCarryOver        = "retrieval.carry_over"
	keyCandidateK       = "retrieval.candidate_k"
	keyContextK         = "retrieval.context_k"
	keyMaxInFlight      = "retrieval.max_in_flight"
	keyDataDir          = "storage.data_dir"
	keyLogVerbose       = "log.verbose"
)

// SettingsOverlay adjusts loaded settings, typically from the environment.
type SettingsOverlay func(settings *domain.AppSettings) error

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	overlay     SettingsOverlay
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// SetOverlay sets a function applied on top of the config file by Get.
func (s *SettingsService) SetOverlay(overlay SettingsOverlay) {
	s.overlay = overlay
}

// Get retrieves current application settings: defaults, then the config
// file, then the overlay.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, d.LLM.Provider)

	settings := &domain.AppSettings{
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, d.Server.Addr),
			DevMode:        s.getBool(keyServerDevMode, d.Server.DevMode),
			AllowedOrigins: s.getStringSlice(keyServerOrigins, d.Server.AllowedOrigins),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.getBaseURL(keyEmbedBaseURL, embedProvider, d.Embedding.BaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
			Prefix:   domain.PrefixConvention(s.getString(keyEmbedPrefix, string(d.Embedding.Prefix))),
		},
		LLM: domain.LLMSettings{
			Provider:      llmProvider,
			Model:         s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:       s.getBaseURL(keyLLMBaseURL, llmProvider, d.LLM.BaseURL),
			APIKey:        s.configStore.GetString(keyLLMAPIKey),
			ContextWindow: s.getInt(keyLLMContextWindow, d.LLM.ContextWindow),
		},
		Reranker: domain.RerankerSettings{
			Provider:    domain.RerankerProvider(s.getString(keyRerankProvider, string(d.Reranker.Provider))),
			Model:       s.getString(keyRerankModel, d.Reranker.Model),
			BaseURL:     s.configStore.GetString(keyRerankBaseURL),
			Concurrency: s.getInt(keyRerankConc, d.Reranker.Concurrency),
		},
		VectorStore: domain.VectorStoreSettings{
			Provider:   domain.VectorStoreProvider(s.getString(keyStoreProvider, string(d.VectorStore.Provider))),
			Path:       s.configStore.GetString(keyStorePath),
			URL:        s.configStore.GetString(keyStoreURL),
			APIKey:     s.configStore.GetString(keyStoreAPIKey),
			Collection: s.getString(keyStoreCollection, d.VectorStore.Collection),
			Dimensions: s.getInt(keyStoreDims, d.VectorStore.Dimensions),
		},
		Retrieval: domain.RetrievalSettings{
			ChunkSize:   s.getInt(keyChunkSize, d.Retrieval.ChunkSize),
			CandidateK:  s.getInt(keyCandidateK, d.Retrieval.CandidateK),
			ContextK:    s.getInt(keyContextK, d.Retrieval.ContextK),
			MaxInFlight: s.getInt(keyMaxInFlight, d.Retrieval.MaxInFlight),
		},
		DataDir: s.configStore.GetString(keyDataDir),
		Verbose: s.getBool(keyLogVerbose, d.Verbose),
	}

	timeout, err := s.getDuration(keyServerTimeout, d.Server.RequestTimeout)
	if err != nil {
		return nil, err
	}
	settings.Server.RequestTimeout = timeout

	if s.overlay != nil {
		if err := s.overlay(settings); err != nil {
			return nil, fmt.Errorf("apply settings overlay: %w", err)
		}
	}

	return settings, nil
}

// Save persists application settings. Empty API keys are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyServerAddr, settings.Server.Addr},
		{keyServerDevMode, settings.Server.DevMode},
		{keyServerOrigins, settings.Server.AllowedOrigins},
		{keyServerTimeout, settings.Server.RequestTimeout.String()},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedPrefix, string(settings.Embedding.Prefix)},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMContextWindow, settings.LLM.ContextWindow},
		{keyRerankProvider, string(settings.Reranker.Provider)},
		{keyRerankModel, settings.Reranker.Model},
		{keyRerankBaseURL, settings.Reranker.BaseURL},
		{keyRerankConc, settings.Reranker.Concurrency},
		{keyStoreProvider, string(settings.VectorStore.Provider)},
		{keyStorePath, settings.VectorStore.Path},
		{keyStoreURL, settings.VectorStore.URL},
		{keyStoreCollection, settings.VectorStore.Collection},
		{keyStoreDims, settings.VectorStore.Dimensions},
		{keyChunkSize, settings.Retrieval.ChunkSize},
		{keyCandidateK, settings.Retrieval.CandidateK},
		{keyContextK, settings.Retrieval.ContextK},
		{keyMaxInFlight, settings.Retrieval.MaxInFlight},
		{keyDataDir, settings.DataDir},
		{keyLogVerbose, settings.Verbose},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey: settings.Embedding.APIKey,
		keyLLMAPIKey:   settings.LLM.APIKey,
		keyStoreAPIKey: settings.VectorStore.APIKey,
	}
	for key, val := range secrets {
		if val == "" {
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	// The collection must match the model's vector size.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.VectorStore.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider == domain.AIProviderOllama {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings are usable. When a validator is set,
// the embedding and LLM providers are also pinged.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider))
	}
	if !settings.VectorStore.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("unknown vector store %q", settings.VectorStore.Provider))
	}
	if settings.VectorStore.Provider == domain.VectorStoreQdrant && settings.VectorStore.URL == "" {
		errs = append(errs, errors.New("qdrant vector store requires vector_store.url"))
	}
	if !settings.Reranker.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("unknown reranker %q", settings.Reranker.Provider))
	}
	if settings.Retrieval.ChunkSize <= 0 || settings.Retrieval.CandidateK <= 0 || settings.Retrieval.ContextK <= 0 {
		errs = append(errs, errors.New("retrieval sizes must be positive"))
	}
	if settings.Retrieval.ContextK > settings.Retrieval.CandidateK {
		errs = append(errs, fmt.Errorf("context_k %d exceeds candidate_k %d",
			settings.Retrieval.ContextK, settings.Retrieval.CandidateK))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if s.aiValidator != nil {
		if err := s.aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
			return fmt.Errorf("embedding: %w", err)
		}
		if err := s.aiValidator.ValidateLLM(&settings.LLM); err != nil {
			return fmt.Errorf("llm: %w", err)
		}
	}
	return nil
}

// ChunkerConfig returns the chunker processor configuration.
func (s *SettingsService) ChunkerConfig() map[string]any {
	settings, err := s.Get()
	if err != nil {
		d := domain.DefaultAppSettings()
		settings = &d
	}
	return map[string]any{
		"chunk_size": settings.Retrieval.ChunkSize,
		"carry_over": s.configStore.GetBool(keyCarryOver),
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getBaseURL falls back to the local default only for local providers. An
// empty URL for a hosted provider lets its client pick the public endpoint.
func (s *SettingsService) getBaseURL(key string, provider domain.AIProvider, localDefault string) string {
	if provider.IsLocal() {
		return s.getString(key, localDefault)
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
