package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiConfigThinking(t *testing.T) {
	testCases := []struct {
		name     string
		model    string
		budget   int32
		disabled bool
		want     int32
	}{
		{name: "flash turns thinking off by default", model: "gemini-2.5-flash", want: 0},
		{name: "flash lite", model: "gemini-2.5-flash-lite", want: 0},
		{name: "explicit budget", model: "gemini-2.5-flash", budget: 512, want: 512},
		{name: "dynamic budget", model: "gemini-2.5-pro", budget: -1, want: -1},
		{name: "pro keeps its default", model: "gemini-2.5-pro", disabled: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := geminiConfig(tc.model, Options{MaxTokens: 1024, ThinkingBudget: tc.budget})

			assert.Equal(t, int32(1024), config.MaxOutputTokens)
			if tc.disabled {
				assert.Nil(t, config.ThinkingConfig)
				return
			}
			require.NotNil(t, config.ThinkingConfig)
			require.NotNil(t, config.ThinkingConfig.ThinkingBudget)
			assert.Equal(t, tc.want, *config.ThinkingConfig.ThinkingBudget)
		})
	}
}

func TestGeminiConfigSystemInstruction(t *testing.T) {
	config := geminiConfig(defaultGeminiModel, Options{System: "be brief", Temperature: 0.2})

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Equal(t, "be brief", config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, float32(0.2), *config.Temperature)
}
