package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketpulse/internal/config"
	"marketpulse/internal/market"
	"marketpulse/internal/news"
)

func TestDedupe(t *testing.T) {
	a := news.Item{Title: "A", Link: "a"}
	b1 := news.Item{Title: "B from q1", Link: "b"}
	b2 := news.Item{Title: "B from q2", Link: "b"}
	c := news.Item{Title: "C", Link: "c"}
	noLink := news.Item{Title: "no link"}

	got := Dedupe([]news.Item{a, b1}, []news.Item{b2, c, noLink})

	assert.Equal(t, []news.Item{a, b2, c}, got)
	assert.Equal(t, got, Dedupe(got), "dedupe is idempotent")
	assert.Empty(t, Dedupe())
}

func TestSeenCache(t *testing.T) {
	c := NewSeenCache()
	assert.False(t, c.Seen("x"))

	c.Mark("x")
	c.Mark("x")

	assert.True(t, c.Seen("x"))
	assert.Equal(t, 1, c.Len())
}

func TestMatchWatchlist(t *testing.T) {
	samsung := config.WatchlistEntry{Ticker: "005930", Market: market.KRX, Name: "Samsung Electronics"}
	tesla := config.WatchlistEntry{Ticker: "TSLA", Market: market.US, Name: "Tesla"}
	entries := []config.WatchlistEntry{samsung, tesla}

	testCases := []struct {
		name   string
		title  string
		themes []string
		want   []config.WatchlistEntry
	}{
		{name: "title match", title: "Samsung Electronics beats estimates", want: []config.WatchlistEntry{samsung}},
		{name: "theme match", title: "EV demand slows", themes: []string{"Electric vehicles", "Tesla supply chain"}, want: []config.WatchlistEntry{tesla}},
		{name: "both", title: "Tesla and Samsung Electronics sign deal", want: []config.WatchlistEntry{samsung, tesla}},
		{name: "case sensitive", title: "tesla shares slide", themes: []string{"samsung electronics"}},
		{name: "no match", title: "Oil prices climb", themes: []string{"Energy"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchWatchlist(entries, tc.title, tc.themes))
		})
	}
}
