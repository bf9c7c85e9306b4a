package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"marketpulse/internal/app"
	"marketpulse/internal/config"
	"marketpulse/internal/logging"
	"marketpulse/internal/server"
)

func main() {
	cfg, warnings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.File)
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}

	if err := cfg.RequireAPI(); err != nil {
		logger.Fatal().Err(err).Msg("Missing credentials")
	}

	if err := os.MkdirAll(cfg.Server.StaticDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Server.StaticDir).Msg("Failed to create static directory")
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize services")
	}

	deps := server.Deps{
		News:        a.News,
		Analyzer:    a.Analyzer,
		Recommender: a.Recommender,
		Market:      a.Market,
		Charts:      a.Charts,
		StaticDir:   cfg.Server.StaticDir,
		Logger:      logger,
	}
	if a.Notifier != nil {
		deps.Notifier = a.Notifier
	} else {
		logger.Warn().Msg("Telegram not configured, /send-telegram is disabled")
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port, deps)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
}
