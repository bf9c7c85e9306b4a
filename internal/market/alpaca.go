package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// AlpacaSource reads US daily bars from the Alpaca market-data API.
type AlpacaSource struct {
	client *marketdata.Client
}

// NewAlpacaSource creates a source using the given credentials. dataURL may
// be empty for the production endpoint.
func NewAlpacaSource(apiKey, apiSecret, dataURL string) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &AlpacaSource{client: marketdata.NewClient(opts)}
}

func (a *AlpacaSource) DailyBars(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	alpacaBars, err := a.client.GetBars(strings.ToUpper(ticker), marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      "iex",
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", ticker, err)
	}

	bars := make([]Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, Bar{
			Date:   ab.Timestamp,
			Open:   ab.Open,
			High:   ab.High,
			Low:    ab.Low,
			Close:  ab.Close,
			Volume: float64(ab.Volume),
		})
	}
	return bars, nil
}
