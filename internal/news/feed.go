package news

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/phuslu/log"

	"marketpulse/internal/logging"
)

// FeedSource reads RSS/Atom feeds as an additional source of news items.
type FeedSource struct {
	parser *gofeed.Parser
	logger *log.Logger
	now    func() time.Time
}

func NewFeedSource(httpClient *http.Client, logger *log.Logger) *FeedSource {
	parser := gofeed.NewParser()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	parser.Client = httpClient

	return &FeedSource{
		parser: parser,
		logger: logging.Component(logger, "feed"),
		now:    time.Now,
	}
}

// FetchNews returns up to limit entries of the feed published in the last 24
// hours. Entries without a publish date are kept. Failures yield an empty
// slice.
func (f *FeedSource) FetchNews(ctx context.Context, feedURL string, limit int) []Item {
	if limit <= 0 {
		return []Item{}
	}

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		f.logger.Error().Err(err).Str("feed", feedURL).Msg("Error fetching feed")
		return []Item{}
	}
	return f.items(feed, feedURL, limit)
}

func (f *FeedSource) items(feed *gofeed.Feed, source string, limit int) []Item {
	cutoff := f.now().Add(-24 * time.Hour)

	items := make([]Item, 0, max(limit, 0))
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		if entry == nil || entry.Link == "" {
			continue
		}

		published := entry.PublishedParsed
		if published == nil {
			published = entry.UpdatedParsed
		}
		if published != nil && published.Before(cutoff) {
			continue
		}

		item := Item{
			Title:   strings.TrimSpace(entry.Title),
			Snippet: stripHTML(entry.Description),
			Link:    entry.Link,
			Date:    entry.Published,
			Source:  source,
		}
		if published != nil {
			item.Date = published.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}

	return items
}

// stripHTML flattens the markup many feeds put in their descriptions.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
