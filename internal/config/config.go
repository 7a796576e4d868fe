package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	// Storage
	DatabasePath string `conf:"default:./teleshare.sqlite3,env:DATABASE_PATH"`
	StoreRetries int    `conf:"default:3,env:STORE_RETRIES"`

	// Gateway
	Addr      string        `conf:"default::8080,env:ADDR"`
	TokenTTL  time.Duration `conf:"default:720h,env:TOKEN_TTL"`
	RateLimit int           `conf:"default:120,env:RATE_LIMIT"`

	// Conversations and notifications
	SessionTimeout time.Duration `conf:"default:5m,env:SESSION_TIMEOUT"`
	NotifyBuffer   int           `conf:"default:256,env:NOTIFY_BUFFER"`

	// Logging
	LogLevel  string `conf:"default:info,enum:debug|info|warn|error,env:LOG_LEVEL"`
	LogFormat string `conf:"default:text,enum:text|json,env:LOG_FORMAT"`
	LogPath   string `conf:"env:LOG_PATH"`
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory. conf only matches flags named after
// its own fields (--addr, --database-path, ...), so the cobra flags on the
// same command line pass through untouched.
func Load() (*Config, error) {
	var cfg Config
	_ = godotenv.Load()

	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	var errs []string
	if c.DatabasePath == "" {
		errs = append(errs, "DATABASE_PATH must not be empty")
	}
	if c.StoreRetries < 1 {
		errs = append(errs, fmt.Sprintf("STORE_RETRIES must be at least 1 (got %d)", c.StoreRetries))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, "SESSION_TIMEOUT must be positive")
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, "TOKEN_TTL must be positive")
	}
	if c.NotifyBuffer < 0 {
		errs = append(errs, "NOTIFY_BUFFER must not be negative")
	}
	if c.RateLimit < 0 {
		errs = append(errs, "RATE_LIMIT must not be negative")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
