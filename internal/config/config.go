package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the config file read when MARKETPULSE_CONFIG is unset.
const DefaultPath = "marketpulse.toml"

type Config struct {
	Scheduler     SchedulerConfig `toml:"scheduler"`
	LLM           LLMConfig       `toml:"llm"`
	Server        ServerConfig    `toml:"server"`
	Logging       LoggingConfig   `toml:"logging"`
	WatchlistFile string          `toml:"watchlist_file"`

	// Secrets only ever come from the environment.
	Telegram TelegramConfig `toml:"-"`
	Keys     APIKeys        `toml:"-"`

	Watchlist []WatchlistEntry `toml:"-"`
}

type SchedulerConfig struct {
	IntervalMinutes int      `toml:"interval_minutes" validate:"min=1"`
	NewsPerQuery    int      `toml:"news_per_query" validate:"min=1,max=100"`
	Queries         []string `toml:"queries" validate:"dive,required"`
	Feeds           []string `toml:"feeds" validate:"dive,url"`
}

type LLMConfig struct {
	Provider    string  `toml:"provider" validate:"oneof=gemini openai claude"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature" validate:"min=0,max=2"`

	// ThinkingBudget caps Gemini reasoning tokens. 0 turns thinking off, -1
	// lets the model decide.
	ThinkingBudget int32 `toml:"thinking_budget" validate:"min=-1"`
}

type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port" validate:"min=1,max=65535"`
	StaticDir string `toml:"static_dir" validate:"required"`
}

type LoggingConfig struct {
	Level string `toml:"level" validate:"oneof=trace debug info warn error"`
	File  string `toml:"file"`
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

type APIKeys struct {
	Gemini       string
	OpenAI       string
	Anthropic    string
	Serper       string
	AlpacaKey    string
	AlpacaSecret string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			IntervalMinutes: 10,
			NewsPerQuery:    3,
			Queries:         []string{"주식 시장 주요 뉴스", "Stock Market Breaking News"},
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			Temperature: 0.2,
		},
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8000,
			StaticDir: "static",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "bot.log",
		},
	}
}

// Load reads .env, the optional TOML file and environment overrides, then
// loads the watchlist. The returned warnings are non-fatal conditions the
// caller should log once a logger exists.
func Load() (*Config, []string, error) {
	var warnings []string

	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, "No .env file found, using system environment variables")
	}

	path := os.Getenv("MARKETPULSE_CONFIG")
	if path == "" {
		path = DefaultPath
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, warnings, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, warnings, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, warnings, err
	}

	wl, err := LoadWatchlist(cfg.WatchlistFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		warnings = append(warnings, fmt.Sprintf("watchlist file %s not found, watchlist is empty", cfg.WatchlistFile))
		wl = nil
	case err != nil:
		return nil, warnings, err
	}
	cfg.Watchlist = wl

	return cfg, warnings, nil
}

// LoadFile decodes a TOML file over the defaults. A missing file is not an
// error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = chatID
	}

	c.Keys = APIKeys{
		Gemini:       os.Getenv("GEMINI_API_KEY"),
		OpenAI:       os.Getenv("OPENAI_API_KEY"),
		Anthropic:    os.Getenv("ANTHROPIC_API_KEY"),
		Serper:       os.Getenv("SERPER_API_KEY"),
		AlpacaKey:    os.Getenv("ALPACA_API_KEY"),
		AlpacaSecret: os.Getenv("ALPACA_API_SECRET"),
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if intervalStr := os.Getenv("CHECK_INTERVAL_MINUTES"); intervalStr != "" {
		interval, err := strconv.Atoi(intervalStr)
		if err != nil {
			return fmt.Errorf("invalid CHECK_INTERVAL_MINUTES: %w", err)
		}
		c.Scheduler.IntervalMinutes = interval
	}

	if wl, ok := os.LookupEnv("WATCHLIST_FILE"); ok {
		c.WatchlistFile = wl
	}

	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}

	return nil
}

// Validate checks the non-secret settings.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LLMKey returns the API key of the configured provider.
func (c *Config) LLMKey() string {
	switch c.LLM.Provider {
	case "openai":
		return c.Keys.OpenAI
	case "claude":
		return c.Keys.Anthropic
	default:
		return c.Keys.Gemini
	}
}

// RequireAPI checks the credentials every binary needs: news search and the
// selected LLM provider.
func (c *Config) RequireAPI() error {
	if c.Keys.Serper == "" {
		return fmt.Errorf("SERPER_API_KEY is required")
	}
	if c.LLMKey() == "" {
		return fmt.Errorf("API key for LLM provider %q is required", c.LLM.Provider)
	}
	return nil
}

// RequireBot additionally checks the Telegram credentials.
func (c *Config) RequireBot() error {
	if err := c.RequireAPI(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	return nil
}
