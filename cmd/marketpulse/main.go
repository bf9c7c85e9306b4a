package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"marketpulse/internal/app"
	"marketpulse/internal/config"
	"marketpulse/internal/logging"
	"marketpulse/internal/pipeline"
	"marketpulse/internal/scheduler"
)

type MarketPulseBot struct {
	app      *app.App
	pipeline *pipeline.Pipeline
	interval time.Duration
	logger   *log.Logger
}

func main() {
	cfg, warnings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.File)
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}

	fmt.Println("🎯 Starting MarketPulse - Stock News Alert Bot")
	fmt.Println(strings.Repeat("=", 70))

	bot, err := NewMarketPulseBot(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize MarketPulse bot")
	}

	// Start the monitoring system
	bot.Start()
}

func NewMarketPulseBot(cfg *config.Config, logger *log.Logger) (*MarketPulseBot, error) {
	if err := cfg.RequireBot(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	p, err := a.Pipeline(pipeline.NewSeenCache())
	if err != nil {
		return nil, err
	}

	return &MarketPulseBot{
		app:      a,
		pipeline: p,
		interval: time.Duration(cfg.Scheduler.IntervalMinutes) * time.Minute,
		logger:   logger,
	}, nil
}

func (b *MarketPulseBot) Start() {
	b.logger.Info().Str("interval", b.interval.String()).Msg("🚀 Starting MarketPulse monitoring")

	names := make([]string, 0, len(b.app.Config.Watchlist))
	for _, entry := range b.app.Config.Watchlist {
		names = append(names, entry.Name)
	}

	// Send startup message
	startup := fmt.Sprintf(`🤖 *MarketPulse Stock News Bot Started!*

🔎 Queries: %s
👀 Watchlist: %s
⏰ Checking every %d minutes

🔄 Bot is now active and monitoring the news...`,
		strings.Join(b.app.Config.Scheduler.Queries, ", "),
		orNone(names),
		b.app.Config.Scheduler.IntervalMinutes)

	if err := b.app.Notifier.Send(context.Background(), startup); err != nil {
		b.logger.Error().Err(err).Msg("❌ Error sending startup message")
	}

	s := scheduler.New(b.interval, b.checkNews, b.logger)
	if err := s.Start(); err != nil {
		b.logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Keep the program running
	b.logger.Info().Msg("✅ MarketPulse is running. Press Ctrl+C to stop.")
	select {}
}

func (b *MarketPulseBot) checkNews(ctx context.Context) {
	stats := b.pipeline.Run(ctx)
	if stats.Alerted == 0 {
		b.logger.Info().Msg("📭 No new alerts this round")
	}
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
