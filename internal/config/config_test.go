package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/market"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Scheduler.IntervalMinutes)
	assert.Equal(t, 3, cfg.Scheduler.NewsPerQuery)
	assert.Len(t, cfg.Scheduler.Queries, 2)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Zero(t, cfg.LLM.ThinkingBudget)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketpulse.toml")
	content := `
watchlist_file = "watchlist.yaml"

[scheduler]
interval_minutes = 5
queries = ["semiconductor news"]
feeds = ["https://example.com/rss"]

[llm]
provider = "openai"
model = "gpt-4o-mini"
thinking_budget = 256
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Scheduler.IntervalMinutes)
	assert.Equal(t, 3, cfg.Scheduler.NewsPerQuery, "unset keys keep their default")
	assert.Equal(t, []string{"semiconductor news"}, cfg.Scheduler.Queries)
	assert.Equal(t, []string{"https://example.com/rss"}, cfg.Scheduler.Feeds)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, int32(256), cfg.LLM.ThinkingBudget)
	assert.Equal(t, "watchlist.yaml", cfg.WatchlistFile)
}

func TestValidateRejectsBadProvider(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "llama"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scheduler.IntervalMinutes = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LLM.ThinkingBudget = -2
	assert.Error(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("SERPER_API_KEY", "serper")
	t.Setenv("OPENAI_API_KEY", "openai")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("CHECK_INTERVAL_MINUTES", "15")

	cfg := Default()
	require.NoError(t, cfg.applyEnv())

	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 15, cfg.Scheduler.IntervalMinutes)
	assert.Equal(t, "openai", cfg.LLMKey())
	assert.NoError(t, cfg.RequireBot())
}

func TestApplyEnvInvalidChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	cfg := Default()
	assert.Error(t, cfg.applyEnv())
}

func TestRequireBotMissingCredentials(t *testing.T) {
	cfg := Default()
	assert.EqualError(t, cfg.RequireAPI(), "SERPER_API_KEY is required")

	cfg.Keys.Serper = "s"
	cfg.Keys.Gemini = "g"
	assert.NoError(t, cfg.RequireAPI())
	assert.EqualError(t, cfg.RequireBot(), "TELEGRAM_BOT_TOKEN is required")
}

func TestParseWatchlistFormats(t *testing.T) {
	testCases := []struct {
		ext  string
		data string
	}{
		{
			ext:  ".json",
			data: `[{"ticker": "005930", "market": "KRX", "name": "Samsung Electronics"}, {"ticker": "TSLA", "market": "us", "name": "Tesla"}]`,
		},
		{
			ext: ".yaml",
			data: `
- ticker: "005930"
  market: KRX
  name: Samsung Electronics
- ticker: TSLA
  market: us
  name: Tesla
`,
		},
		{
			ext: ".toml",
			data: `
[[watchlist]]
ticker = "005930"
market = "KRX"
name = "Samsung Electronics"

[[watchlist]]
ticker = "TSLA"
market = "us"
name = "Tesla"
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.ext, func(t *testing.T) {
			entries, err := ParseWatchlist(tc.ext, []byte(tc.data))
			require.NoError(t, err)
			assert.Equal(t, DefaultWatchlist(), entries)
		})
	}
}

func TestParseWatchlistRejectsBadEntries(t *testing.T) {
	_, err := ParseWatchlist(".json", []byte(`[{"ticker": "X", "market": "LSE", "name": "Foo"}]`))
	assert.Error(t, err)

	_, err = ParseWatchlist(".json", []byte(`[{"market": "US", "name": "Foo"}]`))
	assert.Error(t, err)

	_, err = ParseWatchlist(".csv", []byte(`ticker,market,name`))
	assert.Error(t, err)
}

func TestLoadWatchlist(t *testing.T) {
	entries, err := LoadWatchlist("")
	require.NoError(t, err)
	assert.Equal(t, market.KRX, entries[0].Market)

	_, err = LoadWatchlist(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
