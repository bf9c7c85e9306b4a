package pipeline

import (
	"context"

	"github.com/phuslu/log"

	"marketpulse/internal/alert"
	"marketpulse/internal/analyzer"
	"marketpulse/internal/config"
	"marketpulse/internal/logging"
	"marketpulse/internal/market"
	"marketpulse/internal/news"
)

// NewsFetcher returns recent news for a search query or a feed URL.
type NewsFetcher interface {
	FetchNews(ctx context.Context, query string, limit int) []news.Item
}

type Analyzer interface {
	Analyze(ctx context.Context, item news.Item) *analyzer.Analysis
}

type Snapshotter interface {
	Snapshot(ctx context.Context, ticker string, m market.Market) *market.Snapshot
}

type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Options wires a Pipeline. Feeds and FeedURLs may be empty.
type Options struct {
	Search       NewsFetcher
	Feeds        NewsFetcher
	Analyzer     Analyzer
	Market       Snapshotter
	Notifier     Notifier
	Seen         *SeenCache
	Queries      []string
	FeedURLs     []string
	NewsPerQuery int
	Watchlist    []config.WatchlistEntry
	Logger       *log.Logger
}

// RunStats counts what one run did.
type RunStats struct {
	Fetched  int
	Unique   int
	Skipped  int
	Analyzed int
	Low      int
	Alerted  int
	Failed   int
}

// Pipeline is one pass of fetch, dedupe, analyze, enrich and notify. Items
// are processed one at a time.
type Pipeline struct {
	opts   Options
	seen   *SeenCache
	logger *log.Logger
}

func New(opts Options) *Pipeline {
	if opts.NewsPerQuery <= 0 {
		opts.NewsPerQuery = 3
	}
	seen := opts.Seen
	if seen == nil {
		seen = NewSeenCache()
	}
	return &Pipeline{
		opts:   opts,
		seen:   seen,
		logger: logging.Component(opts.Logger, "pipeline"),
	}
}

// Seen exposes the cache the pipeline marks links in.
func (p *Pipeline) Seen() *SeenCache {
	return p.seen
}

// Run processes every unseen item once. A failed analysis leaves the link
// unmarked so the next run retries it. Low importance items and items whose
// alert was attempted are marked, whether or not delivery succeeded.
func (p *Pipeline) Run(ctx context.Context) RunStats {
	var stats RunStats

	p.logger.Info().Msg("Checking news...")

	var batches [][]news.Item
	for _, query := range p.opts.Queries {
		items := p.opts.Search.FetchNews(ctx, query, p.opts.NewsPerQuery)
		stats.Fetched += len(items)
		batches = append(batches, items)
	}
	if p.opts.Feeds != nil {
		for _, feedURL := range p.opts.FeedURLs {
			items := p.opts.Feeds.FetchNews(ctx, feedURL, p.opts.NewsPerQuery)
			stats.Fetched += len(items)
			batches = append(batches, items)
		}
	}

	items := Dedupe(batches...)
	stats.Unique = len(items)

	for _, item := range items {
		if ctx.Err() != nil {
			p.logger.Warn().Err(ctx.Err()).Msg("Run cancelled")
			break
		}

		if p.seen.Seen(item.Link) {
			stats.Skipped++
			continue
		}

		p.logger.Info().Str("title", item.Title).Msg("Analyzing")
		analysis := p.opts.Analyzer.Analyze(ctx, item)
		if analysis == nil {
			stats.Failed++
			continue
		}
		stats.Analyzed++

		if analysis.Importance == analyzer.Low {
			stats.Low++
			p.logger.Info().Str("title", item.Title).Msg("Skipping low importance news")
			p.seen.Mark(item.Link)
			continue
		}

		text := alert.Format(alert.Alert{
			News:     item,
			Analysis: analysis,
			Stocks:   p.relatedStocks(ctx, item.Title, analysis.Themes),
		})

		if err := p.opts.Notifier.Send(ctx, text); err != nil {
			p.logger.Error().Err(err).Str("link", item.Link).Msg("Failed to send alert")
		} else {
			stats.Alerted++
			p.logger.Info().Str("title", item.Title).Msg("Alert sent")
		}
		p.seen.Mark(item.Link)
	}

	p.logger.Info().
		Int("fetched", stats.Fetched).
		Int("unique", stats.Unique).
		Int("skipped", stats.Skipped).
		Int("analyzed", stats.Analyzed).
		Int("low", stats.Low).
		Int("alerted", stats.Alerted).
		Int("failed", stats.Failed).
		Int("seen", p.seen.Len()).
		Msg("Run finished")

	return stats
}

// relatedStocks quotes every watchlist entry the news mentions. Entries
// without price data are left out.
func (p *Pipeline) relatedStocks(ctx context.Context, title string, themes []string) []alert.StockQuote {
	var quotes []alert.StockQuote
	for _, entry := range MatchWatchlist(p.opts.Watchlist, title, themes) {
		if p.opts.Market == nil {
			break
		}
		snap := p.opts.Market.Snapshot(ctx, entry.Ticker, entry.Market)
		if snap == nil {
			p.logger.Warn().Str("ticker", entry.Ticker).Msg("No market data for watchlist match")
			continue
		}
		quotes = append(quotes, alert.StockQuote{Name: entry.Name, Snapshot: *snap})
	}
	return quotes
}
