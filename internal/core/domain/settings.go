package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI or any OpenAI-compatible API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderDummy returns canned answers and needs no backend.
	AIProviderDummy AIProvider = "dummy"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderDummy:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderDummy
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderDummy:
		return "Dummy (canned answers)"
	default:
		return unknownDescription
	}
}

// PrefixConvention selects how document/query sides are encoded for an embedding model.
type PrefixConvention string

const (
	// PrefixNomic prepends "search_document: " / "search_query: ".
	PrefixNomic PrefixConvention = "nomic"

	// PrefixNone sends text unchanged.
	PrefixNone PrefixConvention = "none"
)

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Gemini).
	APIKey string

	// Prefix is the side convention applied at the request boundary.
	Prefix PrefixConvention
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic || e.Provider == AIProviderDummy {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// ContextWindow is the model context size in tokens, where the backend accepts one.
	ContextWindow int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreProvider identifies a vector store backend.
type VectorStoreProvider string

// Available vector stores.
const (
	VectorStoreChromem VectorStoreProvider = "chromem"
	VectorStoreQdrant  VectorStoreProvider = "qdrant"
	VectorStoreMemory  VectorStoreProvider = "memory"
)

// IsValid returns true if the vector store is recognised.
func (p VectorStoreProvider) IsValid() bool {
	switch p {
	case VectorStoreChromem, VectorStoreQdrant, VectorStoreMemory:
		return true
	default:
		return false
	}
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	Provider VectorStoreProvider

	// Path is the chromem persistence directory; empty keeps it in memory.
	Path string

	// URL is the Qdrant REST endpoint.
	URL string

	// APIKey is the Qdrant API key.
	APIKey string

	// Collection is the collection name.
	Collection string

	// Dimensions is the embedding size; used to create collections and list probes.
	Dimensions int
}

// RerankerProvider identifies a cross-encoder backend.
type RerankerProvider string

// Available rerankers.
const (
	// RerankerTEI calls a text-embeddings-inference /rerank endpoint.
	RerankerTEI RerankerProvider = "tei"

	// RerankerLexical scores by token overlap, with no model.
	RerankerLexical RerankerProvider = "lexical"
)

// IsValid returns true if the reranker is recognised.
func (p RerankerProvider) IsValid() bool {
	return p == RerankerTEI || p == RerankerLexical
}

// RerankerSettings holds cross-encoder configuration.
type RerankerSettings struct {
	Provider RerankerProvider
	Model    string
	BaseURL  string

	// Concurrency bounds parallel scoring calls; zero means GOMAXPROCS.
	Concurrency int
}

// RetrievalSettings holds the chunking and two-stage retrieval parameters.
type RetrievalSettings struct {
	// ChunkSize is the character count a chunk must exceed before closing.
	ChunkSize int

	// CandidateK is the coarse vector search size.
	CandidateK int

	// ContextK is the number of reranked passages placed in the prompt.
	ContextK int

	// MaxInFlight bounds concurrent answers; zero means unbounded.
	MaxInFlight int
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	Addr           string
	DevMode        bool
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Server      ServerSettings
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	Reranker    RerankerSettings
	VectorStore VectorStoreSettings
	Retrieval   RetrievalSettings

	// DataDir holds the sqlite database and the default chromem directory.
	DataDir string

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultAppSettings returns settings with sensible defaults.
// The defaults match a local Ollama install with nomic-embed-text and llama3.1.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{
			Addr:           ":5000",
			AllowedOrigins: []string{"*"},
			RequestTimeout: 5 * time.Minute,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
			Prefix:   PrefixNomic,
		},
		LLM: LLMSettings{
			Provider:      AIProviderOllama,
			Model:         "llama3.1",
			BaseURL:       "http://localhost:11434",
			ContextWindow: 2000,
		},
		Reranker: RerankerSettings{
			Provider: RerankerLexical,
			Model:    "cross-encoder/ms-marco-MiniLM-L-12-v2",
		},
		VectorStore: VectorStoreSettings{
			Provider:   VectorStoreChromem,
			Collection: "embeddings",
			Dimensions: 768,
		},
		Retrieval: RetrievalSettings{
			ChunkSize:  1200,
			CandidateK: 100,
			ContextK:   5,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
		AIProviderDummy,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.1",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
		AIProviderDummy:     "dummy",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
