// Package llm hides the model vendor behind a single prompt-in, text-out
// call and provides the JSON extraction every caller needs on top of it.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Generator sends one prompt to a model and returns the text of its first
// answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

type Options struct {
	Provider    string
	APIKey      string
	Model       string
	System      string
	Temperature float32
	MaxTokens   int

	// ThinkingBudget is only read by Gemini. Thinking tokens count against
	// MaxTokens, so the zero value disables thinking.
	ThinkingBudget int32
}

// New builds the Generator for opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", opts.Provider)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}

	switch strings.ToLower(opts.Provider) {
	case ProviderGemini, "":
		return NewGemini(ctx, opts)
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderClaude:
		return NewClaude(opts), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
	}
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
