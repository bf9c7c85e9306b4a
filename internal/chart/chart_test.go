package chart

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/market"
)

type fakeHistory struct {
	bars []market.Bar
	err  error
	days int
}

func (f *fakeHistory) History(ctx context.Context, ticker string, m market.Market, days int) ([]market.Bar, error) {
	f.days = days
	return f.bars, f.err
}

func sampleBars() []market.Bar {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	var bars []market.Bar
	price := 100.0
	for i := 0; i < 10; i++ {
		open := price
		price += float64(i%3) - 1
		bars = append(bars, market.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   open,
			High:   max(open, price) + 1,
			Low:    min(open, price) - 1,
			Close:  price,
			Volume: float64(1000 * (i + 1)),
		})
	}
	return bars
}

func TestRenderWritesPDF(t *testing.T) {
	dir := t.TempDir()
	history := &fakeHistory{bars: sampleBars()}
	r := NewRenderer(dir, history, nil)
	r.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }

	path := r.Render(context.Background(), "TSLA", market.US)

	require.Equal(t, filepath.Join(dir, "TSLA_20261015093000.pdf"), path)
	assert.Equal(t, DefaultDays, history.days)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderFailuresReturnEmpty(t *testing.T) {
	dir := t.TempDir()

	assert.Empty(t, NewRenderer(dir, &fakeHistory{err: errors.New("timeout")}, nil).Render(context.Background(), "TSLA", market.US))
	assert.Empty(t, NewRenderer(dir, &fakeHistory{}, nil).Render(context.Background(), "005930", market.KRX))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDrawSingleFlatBar(t *testing.T) {
	data, err := Draw("flat", []market.Bar{{Open: 10, High: 10, Low: 10, Close: 10}})
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = Draw("empty", nil)
	assert.Error(t, err)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "BRK-B", safeName("BRK/B"))
	assert.Equal(t, "005930", safeName("005930"))
}
