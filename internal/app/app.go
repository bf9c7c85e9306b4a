package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/phuslu/log"

	"marketpulse/internal/alert"
	"marketpulse/internal/analyzer"
	"marketpulse/internal/chart"
	"marketpulse/internal/config"
	"marketpulse/internal/llm"
	"marketpulse/internal/market"
	"marketpulse/internal/news"
	"marketpulse/internal/pipeline"
	"marketpulse/internal/prompts"
	"marketpulse/internal/scraper"
)

// App holds the components every binary shares.
type App struct {
	Config *config.Config
	Logger *log.Logger

	News        *news.Client
	Feeds       *news.FeedSource
	LLM         llm.Generator
	Analyzer    *analyzer.MarketAnalyzer
	Recommender *analyzer.Recommender
	Market      *market.Service
	Charts      *chart.Renderer

	// Notifier is nil unless Telegram credentials are configured.
	Notifier *alert.TelegramNotifier
}

// New wires the adapters from cfg. It fails only on misconfiguration; no
// external call is made except the Telegram login.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = &log.DefaultLogger
	}

	gen, err := llm.New(ctx, llm.Options{
		Provider:       cfg.LLM.Provider,
		APIKey:         cfg.LLMKey(),
		Model:          cfg.LLM.Model,
		System:         prompts.SystemPrompt(),
		Temperature:    cfg.LLM.Temperature,
		ThinkingBudget: cfg.LLM.ThinkingBudget,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		News:   news.NewClient(cfg.Keys.Serper, news.WithLogger(logger)),
		Feeds:  news.NewFeedSource(nil, logger),
		LLM:    gen,
	}

	a.Analyzer = analyzer.NewMarketAnalyzer(gen, a.News, logger)
	a.Recommender = analyzer.NewRecommender(gen, logger)

	// Without Alpaca credentials US tickers simply have no price data.
	var us market.BarSource
	if cfg.Keys.AlpacaKey != "" && cfg.Keys.AlpacaSecret != "" {
		us = market.NewAlpacaSource(cfg.Keys.AlpacaKey, cfg.Keys.AlpacaSecret, "")
	} else {
		logger.Warn().Msg("ALPACA_API_KEY/ALPACA_API_SECRET not set, US quotes disabled")
	}
	a.Market = market.NewService(market.NewNaverSource("", nil), us, scraper.NewNaverScraper(), logger)

	a.Charts = chart.NewRenderer(filepath.Join(cfg.Server.StaticDir, "charts"), a.Market, logger)

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		notifier, err := alert.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if err != nil {
			return nil, err
		}
		a.Notifier = notifier
	}

	return a, nil
}

// Pipeline builds the scheduled batch run over seen.
func (a *App) Pipeline(seen *pipeline.SeenCache) (*pipeline.Pipeline, error) {
	if a.Notifier == nil {
		return nil, fmt.Errorf("telegram notifier is not configured")
	}

	return pipeline.New(pipeline.Options{
		Search:       a.News,
		Feeds:        a.Feeds,
		Analyzer:     a.Analyzer,
		Market:       a.Market,
		Notifier:     a.Notifier,
		Seen:         seen,
		Queries:      a.Config.Scheduler.Queries,
		FeedURLs:     a.Config.Scheduler.Feeds,
		NewsPerQuery: a.Config.Scheduler.NewsPerQuery,
		Watchlist:    a.Config.Watchlist,
		Logger:       a.Logger,
	}), nil
}
