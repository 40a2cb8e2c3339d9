package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Decoding parameters for answers. Generation is deterministic and unbounded.
const (
	answerTemperature = 0.0
	answerTopP        = 0.3
	answerMaxTokens   = -1
)

// fallbackSystemPrompt is used when no prompt store is configured.
const fallbackSystemPrompt = "Answer the question using only the supplied context. " +
	"Do not use prior knowledge about other real-world cases."

// Composer builds the answer prompt and runs generation.
type Composer struct {
	llm           driven.LLMService
	prompts       driven.PromptStore
	contextWindow int
}

// NewComposer creates a composer. prompts may be nil.
func NewComposer(llm driven.LLMService, prompts driven.PromptStore, contextWindow int) *Composer {
	return &Composer{llm: llm, prompts: prompts, contextWindow: contextWindow}
}

// ComposePrompt joins passages into one context block followed by the question.
func ComposePrompt(question string, passages []string) string {
	var b strings.Builder
	b.WriteString("Context: ")
	b.WriteString(strings.Join(passages, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// Answer generates an answer to question from passages and returns the raw text.
func (c *Composer) Answer(ctx context.Context, question string, passages []string) (string, error) {
	prompt := ComposePrompt(question, passages)
	logger.Debug("composer: %d passages, prompt %d chars", len(passages), len(prompt))

	text, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{
		System:        c.systemPrompt(),
		MaxTokens:     answerMaxTokens,
		Temperature:   answerTemperature,
		TopP:          answerTopP,
		ContextWindow: c.contextWindow,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	return text, nil
}

func (c *Composer) systemPrompt() string {
	if c.prompts == nil {
		return fallbackSystemPrompt
	}
	p, err := c.prompts.Load(driven.PromptAnswerSystem)
	if err != nil || p == "" {
		logger.Warn("composer: system prompt unavailable, using fallback: %v", err)
		return fallbackSystemPrompt
	}
	return p
}
