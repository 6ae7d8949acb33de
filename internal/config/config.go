package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration. Development runs work with no
// environment at all: SQLite for projects, in-memory message history.
type Config struct {
	Port string
	Env  string

	// DatabaseURL selects Postgres for projects and characters; when unset
	// the server falls back to SQLite at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// RedisURL selects Redis for message history and rate limiting; when
	// unset histories live in process memory and rate limiting is off.
	RedisURL string

	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled   bool
}

// Load reads configuration from the environment, consulting a .env file
// first so development runs can keep settings out of the shell.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             envOr("PORT", "8080"),
		Env:              envOr("ENV", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       envOr("SQLITE_PATH", "./data/studio.db"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AutoBlockEnabled: envOr("AUTO_BLOCK_ENABLED", "false") == "true",
	}

	for _, entry := range strings.Split(os.Getenv("RATE_LIMIT_WHITELIST"), ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
		}
	}

	// Production never runs on the in-process fallbacks.
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required in production")
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
