package pipeline

import (
	"strings"

	"marketpulse/internal/config"
)

// MatchWatchlist returns the entries whose name appears verbatim in the title
// or in one of the themes. Matching is a case-sensitive substring test, so a
// short or generic name can match unrelated news.
func MatchWatchlist(entries []config.WatchlistEntry, title string, themes []string) []config.WatchlistEntry {
	var matched []config.WatchlistEntry
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		if strings.Contains(title, entry.Name) {
			matched = append(matched, entry)
			continue
		}
		for _, theme := range themes {
			if strings.Contains(theme, entry.Name) {
				matched = append(matched, entry)
				break
			}
		}
	}
	return matched
}
