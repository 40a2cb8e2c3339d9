package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The model behind it may be asymmetric: documents and queries are encoded
// under different conventions. Adapters apply the model-specific convention
// (textual prefixes, task types) at the request boundary; callers always pass
// plain text.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Gemini (text-embedding-004)
type EmbeddingService interface {
	// EmbedDocuments embeds chunk texts under the document-side convention.
	// The result has one vector per text, in order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a question under the query-side convention.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match the vector store collection.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
