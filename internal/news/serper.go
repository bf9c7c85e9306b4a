package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phuslu/log"

	"marketpulse/internal/logging"
)

const (
	// DefaultBaseURL is the Serper search API.
	DefaultBaseURL = "https://google.serper.dev"

	// historySuffix frames a query so the search favours past market reactions.
	historySuffix = " stock price reaction history"

	// historyResults is how many organic results SearchPastReaction asks for.
	historyResults = 3

	// lastDay restricts news search to the past 24 hours.
	lastDay = "qdr:d"
)

// Item is a single news article. Link identifies it.
type Item struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Date    string `json:"date"`
	Source  string `json:"source,omitempty"`
}

// SearchResult is an organic web search hit used as historical context.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type searchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
	TBS   string `json:"tbs,omitempty"`
}

type newsResponse struct {
	News []Item `json:"news"`
}

type organicResponse struct {
	Organic []SearchResult `json:"organic"`
}

// Client talks to the Serper news and web search endpoints. Every call is a
// single request; failures are logged and reported as empty results.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another host, mainly for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logging.Component(logger, "news")
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.Component(nil, "news"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchNews returns at most limit articles from the last 24 hours matching
// query. It never fails: errors are logged and yield an empty slice, as does
// a limit below one.
func (c *Client) FetchNews(ctx context.Context, query string, limit int) []Item {
	if limit <= 0 {
		return []Item{}
	}

	var resp newsResponse
	if err := c.post(ctx, "/news", searchRequest{Query: query, Num: limit, TBS: lastDay}, &resp); err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("Error fetching news")
		return []Item{}
	}

	items := resp.News
	if len(items) > limit {
		items = items[:limit]
	}
	for i := range items {
		items[i].Source = "serper"
	}
	return items
}

// SearchPastReaction looks for earlier coverage of similar events so the
// analyzer can describe how markets reacted back then.
func (c *Client) SearchPastReaction(ctx context.Context, query string) []SearchResult {
	var resp organicResponse
	req := searchRequest{Query: query + historySuffix, Num: historyResults}
	if err := c.post(ctx, "/search", req, &resp); err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("Error searching past reaction")
		return []SearchResult{}
	}

	if len(resp.Organic) > historyResults {
		return resp.Organic[:historyResults]
	}
	return resp.Organic
}

func (c *Client) post(ctx context.Context, path string, payload searchRequest, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("serper %s returned status %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
