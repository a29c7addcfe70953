package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"` // Postgres connection string

	// HTTP
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// IMAP ingest (optional)
	IMAPServer       string        `env:"IMAP_SERVER"` // e.g., imap.gmail.com:993
	IMAPEmail        string        `env:"IMAP_EMAIL"`
	IMAPPassword     string        `env:"IMAP_PASSWORD"`
	IMAPPollInterval time.Duration `env:"IMAP_POLL_INTERVAL" envDefault:"1m"`
	IMAPDialTimeout  time.Duration `env:"IMAP_DIAL_TIMEOUT" envDefault:"30s"`

	// Telegram notifications (optional)
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// IngestEnabled returns true if IMAP ingest is configured
func (c *Config) IngestEnabled() bool {
	return c.IMAPServer != "" && c.IMAPEmail != "" && c.IMAPPassword != ""
}

// TelegramEnabled returns true if Telegram notifications are configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// NEON_DATABASE_URL is accepted as an alias for deployments that
	// predate the rename to DATABASE_URL
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("NEON_DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL (or NEON_DATABASE_URL) is not set")
	}

	return cfg, nil
}
