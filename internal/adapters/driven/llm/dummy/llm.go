// Package dummy provides an LLM service that returns a canned answer.
// It backs the development-only dummy query route and offline demos.
package dummy

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

// ModelName is reported by the dummy service.
const ModelName = "dummy"

// DefaultAnswer is returned when no prompt store overrides it.
const DefaultAnswer = `For a trip to be considered a transfer, all the following conditions must be true:

    1. The current service qualifies for through fares.
    2. There can be a maximum of 5 transfers per journey.
    3. The time between entering the current trip and completing the previous one must not exceed 45 minutes.
    4. The current bus service number must not be the same as any of the preceding bus services taken in the journey.
    5. The same card is used for all trips in the journey.

Is there anything else I can help clarify for you?`

// LLMService answers every prompt with the same text.
type LLMService struct {
	promptStore driven.PromptStore
}

// NewLLMService creates a dummy LLM service.
func NewLLMService() *LLMService {
	return &LLMService{}
}

// SetPromptStore sets the store the canned answer is loaded from.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Generate ignores the prompt and returns the canned answer.
func (s *LLMService) Generate(ctx context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.promptStore != nil {
		if answer, err := s.promptStore.Load(driven.PromptDummyAnswer); err == nil && answer != "" {
			return answer, nil
		}
	}
	return DefaultAnswer, nil
}

// ModelName returns "dummy".
func (s *LLMService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *LLMService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
