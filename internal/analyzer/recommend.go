package analyzer

import (
	"context"

	"github.com/phuslu/log"

	"marketpulse/internal/llm"
	"marketpulse/internal/logging"
	"marketpulse/internal/market"
	"marketpulse/internal/prompts"
)

type StockCandidate struct {
	Name   string        `json:"name"`
	Ticker string        `json:"ticker"`
	Market market.Market `json:"market"`
	Reason string        `json:"reason"`
}

// Recommender asks the model for stocks that fit a set of themes.
type Recommender struct {
	llm    llm.Generator
	logger *log.Logger
}

func NewRecommender(gen llm.Generator, logger *log.Logger) *Recommender {
	return &Recommender{
		llm:    gen,
		logger: logging.Component(logger, "recommender"),
	}
}

// Recommend returns candidates in the allowed markets. No recommendations is
// a normal outcome: every failure yields an empty slice.
func (r *Recommender) Recommend(ctx context.Context, themes []string, newsContext string, markets []market.Market) []StockCandidate {
	names := make([]string, len(markets))
	allowed := make(map[market.Market]bool, len(markets))
	for i, m := range markets {
		names[i] = string(m)
		allowed[m] = true
	}

	text, err := r.llm.Generate(ctx, prompts.RecommendPrompt(themes, newsContext, names))
	if err != nil {
		r.logger.Error().Err(err).Msg("Error recommending stocks")
		return []StockCandidate{}
	}

	raw := llm.ParseJSON[[]StockCandidate](text)
	if raw == nil {
		r.logger.Error().Str("response", truncate(text, 200)).Msg("Error parsing stock recommendations")
		return []StockCandidate{}
	}

	stocks := make([]StockCandidate, 0, len(*raw))
	for _, s := range *raw {
		m, err := market.ParseMarket(string(s.Market))
		if err != nil || !allowed[m] || s.Ticker == "" {
			r.logger.Debug().Str("ticker", s.Ticker).Str("market", string(s.Market)).Msg("Dropping recommendation")
			continue
		}
		s.Market = m
		stocks = append(stocks, s)
	}
	return stocks
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
