package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService reads and writes AppSettings. Get layers the config file
// over the defaults and the environment over both.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider and SetLLMProvider switch provider and model in
	// one write. An empty model selects the provider's default.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate reports the first unusable setting and, when a validator is
	// attached, pings the configured providers.
	Validate() error
}
