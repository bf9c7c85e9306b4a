package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fundamentals holds the valuation ratios shown on a Naver Finance item page.
// Empty fields were not present on the page.
type Fundamentals struct {
	PER string `json:"per,omitempty"`
	PBR string `json:"pbr,omitempty"`
}

type NaverScraper struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewNaverScraper() *NaverScraper {
	return &NaverScraper{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   "https://finance.naver.com",
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// WithBaseURL returns the scraper pointed at another host.
func (ns *NaverScraper) WithBaseURL(baseURL string) *NaverScraper {
	ns.baseURL = strings.TrimRight(baseURL, "/")
	return ns
}

// FetchFundamentals scrapes PER and PBR for a KRX ticker. A page missing
// either element is not an error; the field is simply left empty.
func (ns *NaverScraper) FetchFundamentals(ctx context.Context, ticker string) (*Fundamentals, error) {
	pageURL := fmt.Sprintf("%s/item/main.naver?code=%s", ns.baseURL, ticker)

	resp, err := ns.makeRequest(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d for item page", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item page: %w", err)
	}

	return parseFundamentals(doc), nil
}

func parseFundamentals(doc *goquery.Document) *Fundamentals {
	return &Fundamentals{
		PER: selectionText(doc.Find("#_per").First()),
		PBR: selectionText(doc.Find("#_pbr").First()),
	}
}

func selectionText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return cleanText(sel.Text())
}

func (ns *NaverScraper) makeRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", ns.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.5")

	return ns.client.Do(req)
}

// cleanText collapses the whitespace Naver pads its figures with.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
