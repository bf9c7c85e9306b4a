package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/phuslu/log"

	"marketpulse/internal/alert"
	"marketpulse/internal/app"
	"marketpulse/internal/config"
	"marketpulse/internal/logging"
	"marketpulse/internal/pipeline"
)

// A one-shot run against the real APIs: fetch news for one query, analyze
// the newest item and print the alert that would be sent.
func main() {
	cfg, warnings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(cfg.Logging.Level, "")
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}

	if err := cfg.RequireAPI(); err != nil {
		logger.Fatal().Err(err).Msg("Missing credentials")
	}

	query := cfg.Scheduler.Queries[0]
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize services")
	}

	fmt.Printf("🔍 Fetching news for %q...\n", query)
	items := a.News.FetchNews(ctx, query, cfg.Scheduler.NewsPerQuery)
	if len(items) == 0 {
		fmt.Println("❌ No news found")
		return
	}

	fmt.Printf("✅ Found %d items! Analyzing the latest one...\n\n", len(items))

	item := items[0]
	fmt.Printf("📄 Latest item details:\n")
	fmt.Printf("   Title: %s\n", item.Title)
	fmt.Printf("   Snippet: %s\n", item.Snippet)
	fmt.Printf("   Date: %s\n", item.Date)
	fmt.Printf("   URL: %s\n\n", item.Link)

	fmt.Println("🤖 Analyzing item with AI...")
	analysis := a.Analyzer.Analyze(ctx, item)
	if analysis == nil {
		fmt.Println("❌ Analysis failed, see log for details")
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(analysis, "", "  ")
	fmt.Printf("\n🎯 AI Analysis Results:\n%s\n\n", out)

	var stocks []alert.StockQuote
	for _, entry := range pipeline.MatchWatchlist(cfg.Watchlist, item.Title, analysis.Themes) {
		if snap := a.Market.Snapshot(ctx, entry.Ticker, entry.Market); snap != nil {
			stocks = append(stocks, alert.StockQuote{Name: entry.Name, Snapshot: *snap})
		}
	}

	fmt.Println("📨 Alert preview:")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Println(alert.Format(alert.Alert{News: item, Analysis: analysis, Stocks: stocks}))
	fmt.Println(strings.Repeat("-", 70))
}
