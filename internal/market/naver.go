package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// DefaultNaverURL serves KRX daily price series.
const DefaultNaverURL = "https://api.finance.naver.com"

// siseRow matches one data row of the siseJson payload:
// ["20240102", 78200, 79800, 78200, 79600, 17142847, 53.38]
var siseRow = regexp.MustCompile(`\[\s*"(\d{8})"\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)`)

var seoul = time.FixedZone("KST", 9*60*60)

// NaverSource reads KRX daily bars from Naver Finance.
type NaverSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewNaverSource(baseURL string, httpClient *http.Client) *NaverSource {
	if baseURL == "" {
		baseURL = DefaultNaverURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &NaverSource{baseURL: baseURL, httpClient: httpClient}
}

func (n *NaverSource) DailyBars(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("requestType", "1")
	params.Set("startTime", start.In(seoul).Format("20060102"))
	params.Set("endTime", end.In(seoul).Format("20060102"))
	params.Set("timeframe", "day")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/siseJson.naver?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver returned status %d for %s", resp.StatusCode, ticker)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return parseSise(string(body))
}

// parseSise extracts bars from the JavaScript-style array Naver returns. The
// header row uses single-quoted Korean labels and is skipped by the pattern.
func parseSise(body string) ([]Bar, error) {
	var bars []Bar
	for _, m := range siseRow.FindAllStringSubmatch(body, -1) {
		date, err := time.ParseInLocation("20060102", m[1], seoul)
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", m[1], err)
		}

		var vals [5]float64
		for i := range vals {
			v, err := strconv.ParseFloat(m[i+2], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q on %s: %w", m[i+2], m[1], err)
			}
			vals[i] = v
		}

		bars = append(bars, Bar{
			Date:   date,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return bars, nil
}
