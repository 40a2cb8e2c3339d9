// Package services implements the driving port interfaces.
//
// Pipeline is the retrieval core: Loader turns uploads into pages, the
// chunker splits them, the embedding service and vector store hold the
// chunks, Reranker orders candidates with a cross-encoder and Composer asks
// the LLM for the final answer. ChatService, AuthService, HealthService and
// SettingsService cover the rest of the HTTP surface.
//
// Services depend only on ports; adapters are injected by the caller.
package services
