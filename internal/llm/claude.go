package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

type Claude struct {
	client      anthropic.Client
	model       string
	system      string
	temperature float32
	maxTokens   int
}

func NewClaude(opts Options) *Claude {
	model := opts.Model
	if model == "" {
		model = defaultClaudeModel
	}

	return &Claude{
		client:      anthropic.NewClient(option.WithAPIKey(opts.APIKey)),
		model:       model,
		system:      opts.System,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}
}

func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}
	if c.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("no response from Claude")
	}
	return text.String(), nil
}
