package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"

	"marketpulse/internal/logging"
	"marketpulse/internal/scraper"
)

// Market identifies the exchange group a ticker trades on.
type Market string

const (
	KRX Market = "KRX"
	US  Market = "US"
)

// ParseMarket accepts a market name in any case.
func ParseMarket(s string) (Market, error) {
	switch m := Market(strings.ToUpper(strings.TrimSpace(s))); m {
	case KRX, US:
		return m, nil
	default:
		return "", fmt.Errorf("unknown market %q", s)
	}
}

// Currency returns the quote currency of the market.
func (m Market) Currency() string {
	if m == KRX {
		return "KRW"
	}
	return "USD"
}

// NotAvailable marks fundamentals a provider cannot supply.
const NotAvailable = "N/A"

// Bar is one daily OHLCV row.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Snapshot is the latest quote for a ticker. Change is the percent move of
// the last close against the previous one. PER and PBR are empty when the
// provider had nothing to report.
type Snapshot struct {
	Ticker   string    `json:"ticker"`
	Market   Market    `json:"market"`
	Price    float64   `json:"price"`
	Change   float64   `json:"change"`
	Currency string    `json:"currency"`
	PER      string    `json:"per,omitempty"`
	PBR      string    `json:"pbr,omitempty"`
	AsOf     time.Time `json:"as_of"`
}

// BarSource returns daily bars for a ticker, oldest first.
type BarSource interface {
	DailyBars(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
}

// FundamentalsSource returns valuation ratios for a KRX ticker.
type FundamentalsSource interface {
	FetchFundamentals(ctx context.Context, ticker string) (*scraper.Fundamentals, error)
}

// snapshotWindow is wide enough to cover two trading sessions across long
// holiday breaks.
const snapshotWindow = 14 * 24 * time.Hour

// Service fronts the per-market price providers. Its Snapshot never returns
// an error: every failure is logged and reported as nil.
type Service struct {
	sources      map[Market]BarSource
	fundamentals FundamentalsSource
	logger       *log.Logger
	now          func() time.Time
}

// NewService wires the KRX and US providers. Either may be nil, in which case
// that market has no data.
func NewService(krx, us BarSource, fundamentals FundamentalsSource, logger *log.Logger) *Service {
	sources := make(map[Market]BarSource)
	if krx != nil {
		sources[KRX] = krx
	}
	if us != nil {
		sources[US] = us
	}

	return &Service{
		sources:      sources,
		fundamentals: fundamentals,
		logger:       logging.Component(logger, "market"),
		now:          time.Now,
	}
}

// Snapshot returns the latest price and change for ticker, plus PER/PBR for
// KRX tickers. It returns nil when no price data exists or a provider fails.
func (s *Service) Snapshot(ctx context.Context, ticker string, m Market) *Snapshot {
	end := s.now()
	bars, err := s.bars(ctx, ticker, m, end.Add(-snapshotWindow), end)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Str("market", string(m)).Msg("Error fetching finance data")
		return nil
	}
	if len(bars) == 0 {
		s.logger.Info().Str("ticker", ticker).Str("market", string(m)).Msg("No price data")
		return nil
	}

	latest := bars[len(bars)-1]
	snap := &Snapshot{
		Ticker:   ticker,
		Market:   m,
		Price:    latest.Close,
		Currency: m.Currency(),
		AsOf:     latest.Date,
	}
	if len(bars) > 1 {
		if prev := bars[len(bars)-2].Close; prev != 0 {
			snap.Change = (latest.Close - prev) / prev * 100
		}
	}

	switch m {
	case KRX:
		if s.fundamentals != nil {
			f, err := s.fundamentals.FetchFundamentals(ctx, ticker)
			if err != nil {
				s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Error scraping fundamentals")
			} else {
				snap.PER = f.PER
				snap.PBR = f.PBR
			}
		}
	case US:
		snap.PER = NotAvailable
		snap.PBR = NotAvailable
	}

	return snap
}

// History returns roughly the last days calendar days of bars.
func (s *Service) History(ctx context.Context, ticker string, m Market, days int) ([]Bar, error) {
	end := s.now()
	return s.bars(ctx, ticker, m, end.AddDate(0, 0, -days), end)
}

func (s *Service) bars(ctx context.Context, ticker string, m Market, start, end time.Time) ([]Bar, error) {
	src, ok := s.sources[m]
	if !ok {
		return nil, fmt.Errorf("no price source for market %q", m)
	}

	bars, err := src.DailyBars(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
