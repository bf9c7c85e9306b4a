package pipeline

import "marketpulse/internal/news"

// Dedupe merges batches into one item per link. When two batches carry the
// same link the later item wins, but the link keeps the position where it
// was first seen. Items without a link are dropped.
func Dedupe(batches ...[]news.Item) []news.Item {
	index := make(map[string]int)
	var merged []news.Item

	for _, batch := range batches {
		for _, item := range batch {
			if item.Link == "" {
				continue
			}
			if i, ok := index[item.Link]; ok {
				merged[i] = item
				continue
			}
			index[item.Link] = len(merged)
			merged = append(merged, item)
		}
	}

	return merged
}
