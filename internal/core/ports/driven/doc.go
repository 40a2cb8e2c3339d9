// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser: Reads one file format into plain-text pages
//   - NormaliserRegistry: Selects a normaliser by filename extension
//   - Chunker: Splits pages into sentence-aligned chunks
//   - EmbeddingService: Embeds chunks and questions into one vector space
//   - VectorStore: Chunk vector persistence and nearest-neighbour search
//   - CrossEncoder: Pairwise (query, passage) relevance scoring
//   - LLMService: Answer generation
//   - UserStore, ChatStore: Relational persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PromptStore: Customisable prompts. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
