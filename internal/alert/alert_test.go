package alert

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/analyzer"
	"marketpulse/internal/market"
	"marketpulse/internal/news"
)

func TestFormat(t *testing.T) {
	msg := Format(Alert{
		News: news.Item{
			Title:   "Samsung Electronics wins *huge* order",
			Snippet: "Deal worth_1bn [reported]",
			Link:    "https://news.example.com/samsung",
		},
		Analysis: &analyzer.Analysis{
			Importance:         analyzer.High,
			Reason:             "Boosts foundry_revenue",
			Themes:             []string{"Semiconductors", "Foundry"},
			HistoricalReaction: "Shares rose 3% after similar deals.",
		},
		Stocks: []StockQuote{
			{Name: "Samsung Electronics", Snapshot: market.Snapshot{
				Ticker: "005930", Market: market.KRX, Price: 80800, Change: 1.0, PER: "13.45", PBR: "1.21",
			}},
			{Name: "Tesla", Snapshot: market.Snapshot{
				Ticker: "TSLA", Market: market.US, Price: 1234.5, Change: -2.25, PER: market.NotAvailable, PBR: market.NotAvailable,
			}},
		},
	})

	assert.True(t, strings.HasPrefix(msg, "🚨 *Stock News Alert* 🚨"))
	assert.Contains(t, msg, "📰 *Samsung Electronics wins huge order*")
	assert.Contains(t, msg, `Deal worth\_1bn \[reported]`)
	assert.Contains(t, msg, "*Importance:* High")
	assert.Contains(t, msg, `Boosts foundry\_revenue`)
	assert.Contains(t, msg, "Semiconductors, Foundry")
	assert.Contains(t, msg, "Shares rose 3% after similar deals.")
	assert.Contains(t, msg, "📈 *Related Stocks*")
	assert.Contains(t, msg, "Price: 80,800 KRW 🔺 (+1.00%)")
	assert.Contains(t, msg, "PER: 13.45 | PBR: 1.21")
	assert.Contains(t, msg, "Price: $1,234.5 🔻 (-2.25%)")
	assert.Contains(t, msg, "PER: N/A | PBR: N/A")
	assert.True(t, strings.HasSuffix(msg, "[Read Article](https://news.example.com/samsung)"))
}

func TestFormatMidWithoutStocks(t *testing.T) {
	msg := Format(Alert{
		News: news.Item{Title: "Oil edges up", Link: "https://news.example.com/oil"},
		Analysis: &analyzer.Analysis{
			Importance:         analyzer.Mid,
			HistoricalReaction: analyzer.ReactionNoContext,
		},
	})

	assert.True(t, strings.HasPrefix(msg, "📢"))
	assert.Contains(t, msg, "*Themes:* None")
	assert.Contains(t, msg, "No historical context found")
	assert.NotContains(t, msg, "Related Stocks")
}

func TestFormatMissingFundamentals(t *testing.T) {
	msg := Format(Alert{
		Analysis: &analyzer.Analysis{Importance: analyzer.High},
		Stocks:   []StockQuote{{Snapshot: market.Snapshot{Ticker: "000660", Market: market.KRX, Price: 100}}},
	})

	assert.Contains(t, msg, "*000660 (000660)*")
	assert.Contains(t, msg, "➖ (+0.00%)")
	assert.Contains(t, msg, "PER: N/A | PBR: N/A")
	assert.NotContains(t, msg, "Read Article")
}

// unescapedStars counts asterisks that open or close a bold entity.
func unescapedStars(msg string) int {
	return strings.Count(msg, "*") - strings.Count(msg, `\*`)
}

func TestFormatLongHistoryKeepsMarkupAndLink(t *testing.T) {
	testCases := []struct {
		name     string
		reaction string
	}{
		{name: "hangul", reaction: strings.Repeat("가", 4080)},
		{name: "hangul just over the limit", reaction: strings.Repeat("가", 3939)},
		{name: "escaped characters", reaction: strings.Repeat("a_*[", 2000)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := Format(Alert{
				News: news.Item{Title: "Tesla recall", Snippet: strings.Repeat("snippet ", 100), Link: "https://news.example.com/tsla"},
				Analysis: &analyzer.Analysis{
					Importance:         analyzer.High,
					Reason:             strings.Repeat("reason ", 100),
					Themes:             []string{"EV"},
					HistoricalReaction: tc.reaction,
				},
				Stocks: []StockQuote{{Name: "Tesla", Snapshot: market.Snapshot{
					Ticker: "TSLA", Market: market.US, Price: 250, PER: market.NotAvailable, PBR: market.NotAvailable,
				}}},
			})

			assert.LessOrEqual(t, len([]rune(msg)), maxMessageRunes)
			assert.True(t, strings.HasSuffix(msg, "[Read Article](https://news.example.com/tsla)"))
			assert.Contains(t, msg, "*Tesla (TSLA)*")
			assert.Contains(t, msg, "📜 *Historical Context*")
			assert.Contains(t, msg, "…")
			assert.Zero(t, unescapedStars(msg)%2, "bold markers must pair up")
			assert.NotContains(t, msg, `\…`, "an escape must never be split")
		})
	}
}

func TestFormatShortMessageIsUntouched(t *testing.T) {
	msg := Format(Alert{
		News:     news.Item{Title: "t", Link: "https://news.example.com/x"},
		Analysis: &analyzer.Analysis{Importance: analyzer.Mid, HistoricalReaction: "Rallied 2%."},
	})
	assert.Contains(t, msg, "Rallied 2%.")
	assert.NotContains(t, msg, "…")
}

func TestFormatReportLongSummary(t *testing.T) {
	msg := FormatReport(Report{
		Summary: strings.Repeat("요약_", 3000),
		Stocks:  []ReportStock{{Name: "Nvidia", Ticker: "NVDA", Market: market.US, Reason: "GPUs"}},
	})

	assert.LessOrEqual(t, len([]rune(msg)), maxMessageRunes)
	assert.Contains(t, msg, "- Nvidia (NVDA): N/A (N/A)")
	assert.Contains(t, msg, "Reason: GPUs")
	assert.Zero(t, unescapedStars(msg)%2)
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "가나…", shorten("가나다라", 2))
	assert.Equal(t, "abc", shorten("abc", 5))
	assert.Equal(t, "", shorten("abc", 0))
}

func TestFormatReport(t *testing.T) {
	price, change := 80800.0, -0.5
	msg := FormatReport(Report{
		Summary: "Chip demand_rising",
		Themes:  []string{"AI", "Memory"},
		Stocks: []ReportStock{
			{Name: "Samsung Electronics", Ticker: "005930", Market: market.KRX, Reason: "HBM", Price: &price, Change: &change},
			{Name: "Nvidia", Ticker: "NVDA", Market: market.US, Reason: "GPUs"},
		},
	})

	assert.Contains(t, msg, `*Summary*: Chip demand\_rising`)
	assert.Contains(t, msg, "*Themes*: AI, Memory")
	assert.Contains(t, msg, "- Samsung Electronics (005930): 80,800 KRW (-0.50%)")
	assert.Contains(t, msg, "- Nvidia (NVDA): N/A (N/A)")
	assert.Contains(t, msg, "Reason: GPUs")

	assert.Contains(t, FormatReport(Report{}), "None")
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, "None", formatList(nil, 3))
	assert.Equal(t, "a, b", formatList([]string{"a", "b"}, 3))
	assert.Equal(t, "a, b +2", formatList([]string{"a", "b", "c", "d"}, 2))
}

type fakeSender struct {
	sent     []tgbotapi.Chattable
	err      error
	firstErr error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if len(f.sent) == 1 && f.firstErr != nil {
		return tgbotapi.Message{}, f.firstErr
	}
	return tgbotapi.Message{}, f.err
}

func TestNotifierSend(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 42, nil)

	require.NoError(t, n.Send(context.Background(), "hello *world*"))

	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "hello *world*", msg.Text)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.True(t, msg.DisableWebPagePreview)
}

func TestNotifierSendError(t *testing.T) {
	n := NewNotifier(&fakeSender{err: errors.New("Bad Request: can't parse entities")}, 1, nil)
	err := n.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse entities")
}

func TestNotifierTruncatesLongMessages(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 1, nil)

	require.NoError(t, n.Send(context.Background(), strings.Repeat("가", maxMessageRunes+10)))

	msg := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, maxMessageRunes, len([]rune(msg.Text)))
}

func TestNotifierFallsBackToPlainText(t *testing.T) {
	sender := &fakeSender{firstErr: errors.New("Bad Request: can't parse entities: can't find end of the entity")}
	n := NewNotifier(sender, 7, nil)

	require.NoError(t, n.Send(context.Background(), "broken *markup"))

	require.Len(t, sender.sent, 2)
	first := sender.sent[0].(tgbotapi.MessageConfig)
	second := sender.sent[1].(tgbotapi.MessageConfig)
	assert.Equal(t, tgbotapi.ModeMarkdown, first.ParseMode)
	assert.Empty(t, second.ParseMode)
	assert.Equal(t, "broken *markup", second.Text)
}

func TestNotifierDoesNotRetryOtherErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("Forbidden: bot was blocked by the user")}
	n := NewNotifier(sender, 7, nil)

	assert.Error(t, n.Send(context.Background(), "x"))
	assert.Len(t, sender.sent, 1)
}
