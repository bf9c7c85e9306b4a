package prompts

import (
	"fmt"
	"strings"
)

// ClassifyPrompt asks for importance, themes and a historical search query for
// one news item. The model must answer with JSON only.
func ClassifyPrompt(title, snippet string) string {
	return fmt.Sprintf(`Analyze the following stock market news:
Title: %s
Snippet: %s

Tasks:
1. Determine Importance (High, Mid, Low) for Korean/US markets.
2. Extract 2-3 key Theme Stocks or Sectors.
3. Formulate a search query to find similar PAST events and their market reaction (e.g., "Apple iPhone launch stock price history").

Respond with ONLY valid JSON:
{
  "importance": "High/Mid/Low",
  "reason": "Brief reason...",
  "themes": ["Theme1", "Theme2"],
  "search_query": "Query string..."
}`, title, snippet)
}

// HistoryPrompt asks for a short summary of how markets reacted to similar
// past events. pastContext holds one "- title: snippet" line per result.
func HistoryPrompt(title, pastContext string) string {
	return fmt.Sprintf(`Based on the current news: "%s"
And these search results about similar past events:
%s

Briefly summarize how the market reacted to such events in the past.`, title, pastContext)
}

// RecommendPrompt asks for 3-5 stocks likely to benefit, restricted to markets.
func RecommendPrompt(themes []string, newsContext string, markets []string) string {
	marketStr := strings.Join(markets, ", ")
	return fmt.Sprintf(`Based on the following news context and themes:
News: %s
Themes: %s

Recommend 3-5 stocks from the following markets: [%s] that are most likely to benefit.
Provide the Ticker, Market (one of %s), Name, and a brief Reason (in Korean).

Output JSON format ONLY:
[
  {
    "name": "Samsung Electronics",
    "ticker": "005930",
    "market": "KRX",
    "reason": "..."
  }
]`, newsContext, strings.Join(themes, ", "), marketStr, marketStr)
}

// SystemPrompt returns the system prompt for the AI analyst
func SystemPrompt() string {
	return "You are a senior equity analyst covering the Korean and US stock markets. Keep answers brief and factual. When asked for JSON, reply with JSON only."
}
