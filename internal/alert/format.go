package alert

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"marketpulse/internal/analyzer"
	"marketpulse/internal/market"
	"marketpulse/internal/news"
)

// maxMessageRunes is Telegram's limit on a single text message.
const maxMessageRunes = 4096

// StockQuote is a market snapshot labelled with the name it was matched by.
type StockQuote struct {
	Name string
	market.Snapshot
}

// Alert is everything one news notification shows.
type Alert struct {
	News     news.Item
	Analysis *analyzer.Analysis
	Stocks   []StockQuote
}

// Format renders an alert as Telegram Markdown. It has no side effects.
// When the message would exceed the Telegram limit the snippet, reason and
// historical context are shortened so the markup and article link survive.
func Format(a Alert) string {
	analysis := a.Analysis
	if analysis == nil {
		analysis = &analyzer.Analysis{}
	}

	fields := []string{a.News.Snippet, analysis.Reason, analysis.HistoricalReaction}
	return fitMessage(fields, func(f []string) string {
		return renderAlert(a, analysis, f[0], f[1], f[2])
	})
}

func renderAlert(a Alert, analysis *analyzer.Analysis, snippet, reason, reaction string) string {
	var b strings.Builder

	headline := "📢"
	if analysis.Importance == analyzer.High {
		headline = "🚨"
	}
	fmt.Fprintf(&b, "%s *Stock News Alert* %s\n\n", headline, headline)

	fmt.Fprintf(&b, "📰 *%s*\n", escapeBold(a.News.Title))
	if snippet != "" {
		fmt.Fprintf(&b, "%s\n", escapeMarkdown(snippet))
	}
	b.WriteString("\n")

	b.WriteString("🤖 *AI Analysis*\n")
	fmt.Fprintf(&b, "📊 *Importance:* %s\n", analysis.Importance)
	fmt.Fprintf(&b, "💡 *Reason:* %s\n", escapeMarkdown(reason))
	fmt.Fprintf(&b, "🏷 *Themes:* %s\n\n", escapeMarkdown(formatList(analysis.Themes, 5)))

	b.WriteString("📜 *Historical Context*\n")
	fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(reaction))

	if len(a.Stocks) > 0 {
		b.WriteString("📈 *Related Stocks*\n")
		for _, s := range a.Stocks {
			name := s.Name
			if name == "" {
				name = s.Ticker
			}
			fmt.Fprintf(&b, "*%s (%s)*\n", escapeBold(name), escapeBold(s.Ticker))
			fmt.Fprintf(&b, "  Price: %s %s (%s)\n", formatPrice(s.Price, s.Market), changeEmoji(s.Change), formatChange(s.Change))
			fmt.Fprintf(&b, "  PER: %s | PBR: %s\n\n", orNA(s.PER), orNA(s.PBR))
		}
	}

	if a.News.Link != "" {
		fmt.Fprintf(&b, "[Read Article](%s)", a.News.Link)
	}

	return strings.TrimRight(b.String(), "\n")
}

// ReportStock is one recommended stock of an on-demand analysis.
type ReportStock struct {
	Name   string
	Ticker string
	Market market.Market
	Reason string
	Price  *float64
	Change *float64
}

// Report is the result of an on-demand keyword analysis.
type Report struct {
	Summary string
	Themes  []string
	Stocks  []ReportStock
}

// FormatReport renders an on-demand analysis as Telegram Markdown, fitted
// to one message the same way Format is.
func FormatReport(r Report) string {
	fields := make([]string, 0, len(r.Stocks)+1)
	fields = append(fields, r.Summary)
	for _, s := range r.Stocks {
		fields = append(fields, s.Reason)
	}
	return fitMessage(fields, func(f []string) string {
		return renderReport(r, f[0], f[1:])
	})
}

func renderReport(r Report, summary string, reasons []string) string {
	var b strings.Builder

	b.WriteString("📢 *Analysis Result*\n\n")
	fmt.Fprintf(&b, "*Summary*: %s\n\n", escapeMarkdown(summary))
	fmt.Fprintf(&b, "*Themes*: %s\n\n", escapeMarkdown(formatList(r.Themes, len(r.Themes))))

	b.WriteString("*Recommended Stocks*:\n")
	if len(r.Stocks) == 0 {
		b.WriteString("None\n")
	}
	for i, s := range r.Stocks {
		price, change := "N/A", "N/A"
		if s.Price != nil {
			price = formatPrice(*s.Price, s.Market)
		}
		if s.Change != nil {
			change = formatChange(*s.Change)
		}
		fmt.Fprintf(&b, "- %s (%s): %s (%s)\n", escapeMarkdown(s.Name), escapeMarkdown(s.Ticker), price, change)
		if reasons[i] != "" {
			fmt.Fprintf(&b, "  Reason: %s\n", escapeMarkdown(reasons[i]))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// fitMessage renders fields and, while the result is over the Telegram
// limit, cuts the longest field by the overflow. Fields are shortened before
// escaping, so no entity or escape is ever split.
func fitMessage(fields []string, render func([]string) string) string {
	for {
		msg := render(fields)
		over := utf8.RuneCountInString(msg) - maxMessageRunes
		if over <= 0 {
			return msg
		}

		longest := 0
		for i, f := range fields {
			if utf8.RuneCountInString(f) > utf8.RuneCountInString(fields[longest]) {
				longest = i
			}
		}
		n := utf8.RuneCountInString(fields[longest])
		if n == 0 {
			// Nothing left to cut; Send applies the hard limit.
			return msg
		}
		fields[longest] = shorten(fields[longest], n-over-1)
	}
}

// shorten keeps the first n runes of s and marks the cut.
func shorten(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// Helper function to format lists concisely
func formatList(items []string, maxItems int) string {
	if len(items) == 0 {
		return "None"
	}

	if maxItems <= 0 || len(items) <= maxItems {
		return strings.Join(items, ", ")
	}

	return strings.Join(items[:maxItems], ", ") + fmt.Sprintf(" +%d", len(items)-maxItems)
}

func formatPrice(price float64, m market.Market) string {
	if m == market.KRX {
		return humanize.Comma(int64(math.Round(price))) + " KRW"
	}
	return "$" + humanize.CommafWithDigits(price, 2)
}

func formatChange(change float64) string {
	return fmt.Sprintf("%+.2f%%", change)
}

func changeEmoji(change float64) string {
	switch {
	case change > 0:
		return "🔺"
	case change < 0:
		return "🔻"
	default:
		return "➖"
	}
}

func orNA(s string) string {
	if s == "" {
		return market.NotAvailable
	}
	return escapeMarkdown(s)
}

// escapeMarkdown escapes the characters legacy Telegram Markdown treats as
// entity delimiters.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"`", "\\`",
		"[", "\\[",
	)
	return replacer.Replace(text)
}

// escapeBold prepares text placed inside a *bold* entity, where escapes are
// not honoured and a stray asterisk would close the entity early.
func escapeBold(text string) string {
	return strings.ReplaceAll(text, "*", "")
}
