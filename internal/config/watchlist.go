package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"marketpulse/internal/market"
)

// WatchlistEntry is a tracked stock. Name is what gets matched against news
// titles and themes, so it should be spelled the way the news spells it.
type WatchlistEntry struct {
	Ticker string        `json:"ticker" yaml:"ticker" toml:"ticker" validate:"required"`
	Market market.Market `json:"market" yaml:"market" toml:"market" validate:"oneof=KRX US"`
	Name   string        `json:"name" yaml:"name" toml:"name" validate:"required"`
}

// DefaultWatchlist is used when no watchlist file is configured.
func DefaultWatchlist() []WatchlistEntry {
	return []WatchlistEntry{
		{Ticker: "005930", Market: market.KRX, Name: "Samsung Electronics"},
		{Ticker: "TSLA", Market: market.US, Name: "Tesla"},
	}
}

// LoadWatchlist reads a watchlist from a .json, .yaml/.yml or .toml file.
// An empty path yields DefaultWatchlist. A missing file returns an error
// wrapping os.ErrNotExist.
func LoadWatchlist(path string) ([]WatchlistEntry, error) {
	if path == "" {
		return DefaultWatchlist(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	entries, err := ParseWatchlist(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("watchlist %s: %w", path, err)
	}
	return entries, nil
}

// ParseWatchlist decodes watchlist data in the format named by ext.
func ParseWatchlist(ext string, data []byte) ([]WatchlistEntry, error) {
	var entries []WatchlistEntry

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".toml":
		var doc struct {
			Watchlist []WatchlistEntry `toml:"watchlist"`
		}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		entries = doc.Watchlist
	default:
		return nil, fmt.Errorf("unsupported watchlist format %q", ext)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	for i := range entries {
		entries[i].Market = market.Market(strings.ToUpper(string(entries[i].Market)))
		if err := v.Struct(entries[i]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return entries, nil
}
