package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"marketpulse/internal/alert"
	"marketpulse/internal/market"
	"marketpulse/internal/news"
	"marketpulse/internal/pipeline"
)

const (
	newsPerKeyword = 3
	maxNewsItems   = 7
)

type AnalyzeRequest struct {
	Keywords []string        `json:"keywords" validate:"required,min=1,dive,required"`
	Markets  []market.Market `json:"markets" validate:"dive,oneof=KRX US"`
}

type StockInfo struct {
	Name     string        `json:"name"`
	Ticker   string        `json:"ticker"`
	Market   market.Market `json:"market"`
	Reason   string        `json:"reason"`
	Price    *float64      `json:"price"`
	Change   *float64      `json:"change"`
	ChartURL *string       `json:"chart_url"`
}

type NewsInfo struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
}

type AnalyzeResponse struct {
	NewsSummary       string      `json:"news_summary"`
	Themes            []string    `json:"themes"`
	RecommendedStocks []StockInfo `json:"recommended_stocks"`
	NewsItems         []NewsInfo  `json:"news_items"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "MarketPulse news analysis API is running"})
}

// handleAnalyze summarises the latest news for a set of keywords and
// recommends stocks for the themes it finds.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Markets) == 0 {
		req.Markets = []market.Market{market.KRX, market.US}
	}
	for i, m := range req.Markets {
		req.Markets[i] = market.Market(strings.ToUpper(strings.TrimSpace(string(m))))
	}
	if err := s.validate.Struct(req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info().
		Str("request_id", requestID(ctx)).
		Str("keywords", strings.Join(req.Keywords, ", ")).
		Str("markets", fmt.Sprint(req.Markets)).
		Msg("Analyzing keywords")

	var batches [][]news.Item
	for _, keyword := range req.Keywords {
		batches = append(batches, s.deps.News.FetchNews(ctx, keyword, newsPerKeyword))
	}
	items := pipeline.Dedupe(batches...)
	if len(items) == 0 {
		writeDetail(w, http.StatusNotFound, "No news found")
		return
	}
	if len(items) > maxNewsItems {
		items = items[:maxNewsItems]
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s: %s", item.Title, item.Snippet))
	}
	combined := strings.Join(lines, "\n")

	analysis := s.deps.Analyzer.Analyze(ctx, news.Item{
		Title:   "News Summary for " + strings.Join(req.Keywords, ", "),
		Snippet: combined,
	})
	if analysis == nil {
		writeDetail(w, http.StatusInternalServerError, "AI Analysis failed")
		return
	}

	resp := AnalyzeResponse{
		NewsSummary:       analysis.Reason,
		Themes:            analysis.Themes,
		RecommendedStocks: []StockInfo{},
		NewsItems:         make([]NewsInfo, 0, len(items)),
	}
	if resp.NewsSummary == "" {
		resp.NewsSummary = "No summary available"
	}
	if resp.Themes == nil {
		resp.Themes = []string{}
	}

	for _, c := range s.deps.Recommender.Recommend(ctx, analysis.Themes, combined, req.Markets) {
		stock := StockInfo{Name: c.Name, Ticker: c.Ticker, Market: c.Market, Reason: c.Reason}

		if s.deps.Market != nil {
			if snap := s.deps.Market.Snapshot(ctx, c.Ticker, c.Market); snap != nil {
				price, change := snap.Price, snap.Change
				stock.Price, stock.Change = &price, &change
			}
		}
		if s.deps.Charts != nil {
			if file := s.deps.Charts.Render(ctx, c.Ticker, c.Market); file != "" {
				url := "/static/charts/" + path.Base(strings.ReplaceAll(file, "\\", "/"))
				stock.ChartURL = &url
			}
		}

		resp.RecommendedStocks = append(resp.RecommendedStocks, stock)
	}

	for _, item := range items {
		resp.NewsItems = append(resp.NewsItems, NewsInfo{
			Title: orDefault(item.Title, "No Title"),
			Link:  orDefault(item.Link, "#"),
			Date:  orDefault(item.Date, "Recent"),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSendTelegram forwards an analysis result to the configured chat.
func (s *Server) handleSendTelegram(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notifier == nil {
		writeDetail(w, http.StatusServiceUnavailable, "Telegram is not configured")
		return
	}

	var body AnalyzeResponse
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report := alert.Report{Summary: body.NewsSummary, Themes: body.Themes}
	for _, st := range body.RecommendedStocks {
		report.Stocks = append(report.Stocks, alert.ReportStock{
			Name:   st.Name,
			Ticker: st.Ticker,
			Market: st.Market,
			Reason: st.Reason,
			Price:  st.Price,
			Change: st.Change,
		})
	}

	if err := s.deps.Notifier.Send(r.Context(), alert.FormatReport(report)); err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID(r.Context())).Msg("Error sending report")
		writeDetail(w, http.StatusBadGateway, "Failed to send Telegram message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "Message sent"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
