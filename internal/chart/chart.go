package chart

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/phuslu/log"

	"marketpulse/internal/logging"
	"marketpulse/internal/market"
)

// DefaultDays is how much history a chart covers.
const DefaultDays = 180

// HistorySource returns daily bars for the last days days.
type HistorySource interface {
	History(ctx context.Context, ticker string, m market.Market, days int) ([]market.Bar, error)
}

// Renderer draws candlestick charts into dir.
type Renderer struct {
	dir     string
	history HistorySource
	days    int
	logger  *log.Logger
	now     func() time.Time
}

func NewRenderer(dir string, history HistorySource, logger *log.Logger) *Renderer {
	return &Renderer{
		dir:     dir,
		history: history,
		days:    DefaultDays,
		logger:  logging.Component(logger, "chart"),
		now:     time.Now,
	}
}

// Render writes <dir>/<ticker>_<timestamp>.pdf and returns its path, or ""
// when there is no data or anything fails.
func (r *Renderer) Render(ctx context.Context, ticker string, m market.Market) string {
	bars, err := r.history.History(ctx, ticker, m, r.days)
	if err != nil {
		r.logger.Error().Err(err).Str("ticker", ticker).Msg("Error fetching chart data")
		return ""
	}
	if len(bars) == 0 {
		r.logger.Warn().Str("ticker", ticker).Msg("No data to chart")
		return ""
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		r.logger.Error().Err(err).Str("dir", r.dir).Msg("Error creating chart directory")
		return ""
	}

	name := fmt.Sprintf("%s_%s.pdf", safeName(ticker), r.now().Format("20060102150405"))
	path := filepath.Join(r.dir, name)

	data, err := Draw(fmt.Sprintf("%s (%s) - last %d days", ticker, m, r.days), bars)
	if err != nil {
		r.logger.Error().Err(err).Str("ticker", ticker).Msg("Error drawing chart")
		return ""
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.logger.Error().Err(err).Str("path", path).Msg("Error writing chart")
		return ""
	}

	r.logger.Debug().Str("path", path).Int("bars", len(bars)).Msg("Chart generated")
	return path
}

// Page layout in millimetres, A4 landscape.
const (
	left        = 20.0
	right       = 282.0
	priceTop    = 22.0
	priceBottom = 140.0
	volumeTop   = 148.0
	volumeBot   = 192.0
)

// Draw renders bars as a candlestick chart with a volume panel below it.
func Draw(title string, bars []market.Bar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars to draw")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Text(left, 15, title)

	lo, hi, maxVol := bounds(bars)
	slot := (right - left) / float64(len(bars))
	body := math.Max(slot*0.6, 0.2)

	priceY := func(p float64) float64 {
		return priceBottom - (p-lo)/(hi-lo)*(priceBottom-priceTop)
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.SetFont("Arial", "", 7)
	for i := 0; i <= 4; i++ {
		p := lo + (hi-lo)*float64(i)/4
		y := priceY(p)
		pdf.Line(left, y, right, y)
		pdf.Text(right+1, y+1, fmt.Sprintf("%.2f", p))
	}
	pdf.Rect(left, priceTop, right-left, priceBottom-priceTop, "D")
	pdf.Rect(left, volumeTop, right-left, volumeBot-volumeTop, "D")

	for i, bar := range bars {
		x := left + slot*float64(i) + slot/2

		// Rising days green, falling days red.
		if bar.Close >= bar.Open {
			pdf.SetDrawColor(38, 166, 91)
			pdf.SetFillColor(38, 166, 91)
		} else {
			pdf.SetDrawColor(214, 48, 49)
			pdf.SetFillColor(214, 48, 49)
		}

		pdf.Line(x, priceY(bar.High), x, priceY(bar.Low))

		top := priceY(math.Max(bar.Open, bar.Close))
		height := math.Max(priceY(math.Min(bar.Open, bar.Close))-top, 0.2)
		pdf.Rect(x-body/2, top, body, height, "F")

		if maxVol > 0 {
			vh := bar.Volume / maxVol * (volumeBot - volumeTop)
			pdf.Rect(x-body/2, volumeBot-vh, body, vh, "F")
		}
	}

	pdf.SetTextColor(80, 80, 80)
	pdf.Text(left, volumeBot+5, bars[0].Date.Format("2006-01-02"))
	pdf.Text(right-15, volumeBot+5, bars[len(bars)-1].Date.Format("2006-01-02"))
	pdf.Text(left, volumeTop-1.5, "Volume")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return buf.Bytes(), nil
}

// bounds returns the price range padded by 5% and the largest volume.
func bounds(bars []market.Bar) (lo, hi, maxVol float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
		maxVol = math.Max(maxVol, b.Volume)
	}
	if hi <= lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad, maxVol
}

// safeName keeps ticker symbols such as BRK/B usable as file names.
func safeName(ticker string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, ticker)
}
