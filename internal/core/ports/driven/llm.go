package driven

import "context"

// LLMService turns a composed prompt into the full answer text in one call.
// Backends: ollama, openai (and compatible servers), anthropic, gemini, dummy.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName is the backend model identifier, used in logs and /health.
	ModelName() string

	// Ping issues the cheapest request the backend offers.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions are the sampling parameters of one Generate call.
type GenerateOptions struct {
	System string

	// MaxTokens <= 0 is unlimited; backends that need a cap use their maximum.
	MaxTokens int

	// Temperature is always sent, including 0.
	Temperature float64

	// TopP is the nucleus sampling mass. Zero leaves the backend default.
	TopP float64

	// ContextWindow is the model context size in tokens. Zero leaves the backend default.
	ContextWindow int

	StopWords []string
}
