package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"marketpulse/internal/llm"
	"marketpulse/internal/logging"
	"marketpulse/internal/news"
	"marketpulse/internal/prompts"
)

// Importance is the model's judgement of how much a news item matters.
type Importance string

const (
	High Importance = "High"
	Mid  Importance = "Mid"
	Low  Importance = "Low"
)

// ParseImportance maps model output onto the three levels. Anything that is
// not recognisably high or low counts as Mid, so it still gets a history
// lookup.
func ParseImportance(s string) Importance {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return High
	case "low":
		return Low
	default:
		return Mid
	}
}

// Fixed values of Analysis.HistoricalReaction.
const (
	ReactionLowImportance = "N/A (Low Importance)"
	ReactionNoContext     = "No historical context found"
	ReactionFailed        = "Failed to summarize history"
)

type Analysis struct {
	Importance         Importance `json:"importance"`
	Reason             string     `json:"reason"`
	Themes             []string   `json:"themes"`
	SearchQuery        string     `json:"search_query,omitempty"`
	HistoricalReaction string     `json:"historical_reaction"`
	OriginalNews       news.Item  `json:"original_news"`
}

// classification is the JSON the first model call must produce.
type classification struct {
	Importance  string   `json:"importance"`
	Reason      string   `json:"reason"`
	Themes      []string `json:"themes"`
	SearchQuery string   `json:"search_query"`
}

// HistorySearcher finds coverage of past events similar to a query.
type HistorySearcher interface {
	SearchPastReaction(ctx context.Context, query string) []news.SearchResult
}

// MarketAnalyzer classifies news items in two model calls. The second call,
// and the web search feeding it, only happen for Mid and High items.
type MarketAnalyzer struct {
	llm     llm.Generator
	history HistorySearcher
	logger  *log.Logger
}

func NewMarketAnalyzer(gen llm.Generator, history HistorySearcher, logger *log.Logger) *MarketAnalyzer {
	return &MarketAnalyzer{
		llm:     gen,
		history: history,
		logger:  logging.Component(logger, "analyzer"),
	}
}

// Analyze returns nil when the item could not be classified; callers treat
// that as "skip this item".
func (ma *MarketAnalyzer) Analyze(ctx context.Context, item news.Item) *Analysis {
	c, err := ma.classify(ctx, item)
	if err != nil {
		ma.logger.Error().Err(err).Str("title", item.Title).Msg("Error analyzing news")
		return nil
	}

	analysis := &Analysis{
		Importance:   ParseImportance(c.Importance),
		Reason:       c.Reason,
		Themes:       c.Themes,
		SearchQuery:  c.SearchQuery,
		OriginalNews: item,
	}
	if analysis.Themes == nil {
		analysis.Themes = []string{}
	}

	if analysis.Importance == Low {
		analysis.HistoricalReaction = ReactionLowImportance
		return analysis
	}

	analysis.HistoricalReaction = ma.historicalReaction(ctx, item.Title, c.SearchQuery)
	return analysis
}

func (ma *MarketAnalyzer) classify(ctx context.Context, item news.Item) (*classification, error) {
	text, err := ma.llm.Generate(ctx, prompts.ClassifyPrompt(item.Title, item.Snippet))
	if err != nil {
		return nil, err
	}

	c := llm.ParseJSON[classification](text)
	if c == nil {
		return nil, fmt.Errorf("failed to parse analysis JSON: %.200s", text)
	}
	if strings.TrimSpace(c.Importance) == "" {
		return nil, fmt.Errorf("analysis JSON has no importance: %.200s", text)
	}
	return c, nil
}

func (ma *MarketAnalyzer) historicalReaction(ctx context.Context, title, searchQuery string) string {
	if strings.TrimSpace(searchQuery) == "" {
		return ReactionNoContext
	}

	results := ma.history.SearchPastReaction(ctx, searchQuery)
	if len(results) == 0 {
		return ReactionNoContext
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Title, r.Snippet))
	}

	summary, err := ma.llm.Generate(ctx, prompts.HistoryPrompt(title, strings.Join(lines, "\n")))
	if err != nil {
		ma.logger.Error().Err(err).Str("query", searchQuery).Msg("Error summarizing history")
		return ReactionFailed
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return ReactionFailed
	}
	return summary
}
