package prompts

import (
	"strings"
	"testing"
)

func TestClassifyPromptEmbedsNews(t *testing.T) {
	p := ClassifyPrompt("Fed cuts rates", "The Fed cut by 50bp")

	for _, want := range []string{"Title: Fed cuts rates", "Snippet: The Fed cut by 50bp", `"search_query"`, `"importance"`} {
		if !strings.Contains(p, want) {
			t.Errorf("ClassifyPrompt missing %q", want)
		}
	}
}

func TestRecommendPromptListsMarkets(t *testing.T) {
	p := RecommendPrompt([]string{"AI", "Chips"}, "- Nvidia beats", []string{"KRX", "US"})

	if !strings.Contains(p, "markets: [KRX, US]") {
		t.Errorf("RecommendPrompt did not list markets: %s", p)
	}
	if !strings.Contains(p, "Themes: AI, Chips") {
		t.Errorf("RecommendPrompt did not list themes: %s", p)
	}
}
