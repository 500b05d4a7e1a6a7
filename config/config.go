// Package config loads application configuration: infrastructure
// settings from environment variables and strategy parameters from an
// optional YAML file.
package config

import (
	"os"
)

// Config holds infrastructure configuration loaded from environment
// variables.
type Config struct {
	// Market selection
	QuoteCurrency  string // e.g. "KRW"
	TargetCurrency string // e.g. "XRP"
	Interval       string // chart interval, e.g. "5m"

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	ListenAddr    string

	// Strategy parameter file (YAML); empty = compiled-in defaults
	StrategyFile string

	// Alert channels, all optional
	TelegramToken  string
	TelegramChatID string
	WebhookURL     string
}

// Load reads configuration from environment variables with sensible
// defaults. The public chart API needs no credentials, so nothing here
// is required.
func Load() *Config {
	return &Config{
		QuoteCurrency:  getEnv("QUOTE_CURRENCY", "KRW"),
		TargetCurrency: getEnv("TARGET_CURRENCY", "XRP"),
		Interval:       getEnv("CHART_INTERVAL", "5m"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/candles.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),

		StrategyFile: getEnv("STRATEGY_FILE", ""),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:     getEnv("ALERT_WEBHOOK_URL", ""),
	}
}

// Market returns the "target/quote" pair label used as a storage key,
// e.g. "XRP/KRW".
func (c *Config) Market() string {
	return c.TargetCurrency + "/" + c.QuoteCurrency
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
