// Package ai builds the embedding, generation, reranking and vector store
// adapters selected by the application settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	geminiembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/anthropic"
	dummyllm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/dummy"
	geminillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/reranker/lexical"
	"github.com/custodia-labs/docqa/internal/adapters/driven/reranker/tei"
	chromemstore "github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/chromem"
	memorystore "github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/memory"
	qdrantstore "github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Backends holds the adapters the retrieval pipeline runs on.
type Backends struct {
	Embedding   driven.EmbeddingService
	LLM         driven.LLMService
	Encoder     driven.CrossEncoder
	VectorStore driven.VectorStore
}

// Close releases all resources held by the backends.
func (b *Backends) Close() error {
	var errs []error
	if b.Embedding != nil {
		errs = append(errs, b.Embedding.Close())
	}
	if b.LLM != nil {
		errs = append(errs, b.LLM.Close())
	}
	if b.VectorStore != nil {
		errs = append(errs, b.VectorStore.Close())
	}
	return errors.Join(errs...)
}

// Build creates every backend from settings. The generator receives prompts
// when it supports them. Connectivity is not checked; see Validate.
//
// The vector store is sized from the embedding model so the collection
// always matches the vectors it receives.
func Build(ctx context.Context, settings *domain.AppSettings, prompts driven.PromptStore) (*Backends, error) {
	b := &Backends{}

	emb, err := CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	b.Embedding = emb

	llm, err := CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if aware, ok := llm.(driven.PromptStoreAware); ok && prompts != nil {
		aware.SetPromptStore(prompts)
	}
	b.LLM = llm

	b.Encoder = CreateCrossEncoder(&settings.Reranker)

	vs := settings.VectorStore
	if d := emb.Dimensions(); d > 0 {
		vs.Dimensions = d
	}
	store, err := CreateVectorStore(ctx, &vs, settings.DataDir)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.VectorStore = store

	logger.Debug("backends: embedding=%s llm=%s reranker=%s store=%s",
		emb.ModelName(), llm.ModelName(), b.Encoder.ModelName(), vs.Provider)
	return b, nil
}

// Validate pings the embedding and generation backends.
func (b *Backends) Validate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := b.Embedding.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	if err := b.LLM.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("embedding settings missing")
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		if dimensions == 0 {
			dimensions = ollamaembed.DefaultDimensions
		}
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
			Prefix:     settings.Prefix,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
			Prefix:     settings.Prefix,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     settings.APIKey,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderAnthropic, domain.AIProviderDummy:
		return nil, fmt.Errorf("%s does not support embeddings, use ollama, openai or gemini", settings.Provider)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", settings.Provider)
	}
}

// CreateLLMService creates the generation service selected by settings.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("llm settings missing")
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	case domain.AIProviderDummy:
		return dummyllm.NewLLMService(), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", settings.Provider)
	}
}

// CreateCrossEncoder creates the passage scorer. Anything other than tei
// falls back to the lexical scorer.
func CreateCrossEncoder(settings *domain.RerankerSettings) driven.CrossEncoder {
	if settings != nil && settings.Provider == domain.RerankerTEI {
		return tei.New(tei.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	}
	return lexical.New()
}

// CreateVectorStore opens the vector store selected by settings. An empty
// chromem path persists under dataDir when one is given.
func CreateVectorStore(ctx context.Context, settings *domain.VectorStoreSettings, dataDir string) (driven.VectorStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("vector store settings missing")
	}

	switch settings.Provider {
	case domain.VectorStoreChromem, "":
		path := settings.Path
		if path == "" && dataDir != "" {
			path = filepath.Join(dataDir, "chromem")
		}
		store, err := chromemstore.New(chromemstore.Config{
			Path:       path,
			Collection: settings.Collection,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: open chromem: %w", domain.ErrStore, err)
		}
		return store, nil

	case domain.VectorStoreQdrant:
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		store, err := qdrantstore.New(ctx, qdrantstore.Config{
			URL:        settings.URL,
			APIKey:     settings.APIKey,
			Collection: settings.Collection,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: open qdrant: %w", domain.ErrStore, err)
		}
		return store, nil

	case domain.VectorStoreMemory:
		return memorystore.New(), nil

	default:
		return nil, fmt.Errorf("%w: unsupported vector store %q", domain.ErrInvalidInput, settings.Provider)
	}
}
