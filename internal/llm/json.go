package llm

import (
	"encoding/json"
	"strings"
)

// StripCodeFence removes the markdown fence models like to wrap JSON in,
// with or without a language tag.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(strings.TrimLeft(text, " "), "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseJSON decodes model output into T. It strips code fences first and, if
// the remainder still is not valid JSON, retries on the outermost object or
// array found in the text. It returns nil when nothing decodes, and for a
// bare JSON null.
func ParseJSON[T any](text string) *T {
	cleaned := StripCodeFence(text)
	if cleaned == "null" {
		return nil
	}

	var v T
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil {
		return &v
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(cleaned, pair[0])
		end := strings.LastIndex(cleaned, pair[1])
		if start == -1 || end <= start {
			continue
		}

		var candidate T
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &candidate); err == nil {
			return &candidate
		}
	}

	return nil
}
