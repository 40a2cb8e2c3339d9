package ai

import (
	"context"
	"io"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator builds a throwaway backend from settings and pings it.
type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator { return &ConfigValidator{} }

func (ConfigValidator) ValidateEmbedding(s *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(s)
}

func (ConfigValidator) ValidateLLM(s *domain.LLMSettings) error {
	return ValidateLLMConfig(s)
}

// ValidateEmbeddingConfig pings the embedding backend described by
// settings. Unconfigured settings pass.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	return probe(func(ctx context.Context) (pinger, error) {
		return CreateEmbeddingService(ctx, settings)
	})
}

// ValidateLLMConfig is ValidateEmbeddingConfig for the generator.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	return probe(func(ctx context.Context) (pinger, error) {
		return CreateLLMService(ctx, settings)
	})
}

type pinger interface {
	io.Closer
	Ping(ctx context.Context) error
}

// probe creates a backend, pings it within pingTimeout and closes it.
func probe(create func(context.Context) (pinger, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := create(ctx)
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck
	return svc.Ping(ctx)
}
