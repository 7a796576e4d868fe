package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DATABASE_PATH", "ADDR", "SESSION_TIMEOUT", "TOKEN_TTL", "STORE_RETRIES", "NOTIFY_BUFFER", "RATE_LIMIT", "LOG_LEVEL", "LOG_FORMAT", "LOG_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DatabasePath != "./teleshare.sqlite3" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.SessionTimeout != 5*time.Minute {
		t.Errorf("SessionTimeout = %s", cfg.SessionTimeout)
	}
	if cfg.TokenTTL != 720*time.Hour {
		t.Errorf("TokenTTL = %s", cfg.TokenTTL)
	}
	if cfg.StoreRetries != 3 || cfg.NotifyBuffer != 256 || cfg.RateLimit != 120 {
		t.Errorf("retries/buffer/rate = %d/%d/%d", cfg.StoreRetries, cfg.NotifyBuffer, cfg.RateLimit)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level = %s", cfg.Level())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_PATH", "/var/lib/teleshare/db.sqlite3")
	t.Setenv("SESSION_TIMEOUT", "90s")
	t.Setenv("STORE_RETRIES", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabasePath != "/var/lib/teleshare/db.sqlite3" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.SessionTimeout != 90*time.Second {
		t.Errorf("SessionTimeout = %s", cfg.SessionTimeout)
	}
	if cfg.StoreRetries != 5 {
		t.Errorf("StoreRetries = %d", cfg.StoreRetries)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level = %s", cfg.Level())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"zero retries", func(c *Config) { c.StoreRetries = 0 }, true},
		{"zero session timeout", func(c *Config) { c.SessionTimeout = 0 }, true},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }, true},
		{"rate limit disabled", func(c *Config) { c.RateLimit = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				DatabasePath:   "db.sqlite3",
				StoreRetries:   3,
				Addr:           ":8080",
				TokenTTL:       time.Hour,
				RateLimit:      120,
				SessionTimeout: 5 * time.Minute,
				NotifyBuffer:   16,
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLeavesCommandLineAlone(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_PATH", "")
	os.Unsetenv("DATABASE_PATH")

	args := os.Args
	t.Cleanup(func() { os.Args = args })
	os.Args = []string{"teleshare", "history", "--db", "/tmp/other.sqlite3", "--format", "json", "7"}
	want := append([]string(nil), os.Args...)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabasePath != "./teleshare.sqlite3" {
		t.Errorf("DatabasePath = %q, want the default", cfg.DatabasePath)
	}
	if len(os.Args) != len(want) {
		t.Fatalf("os.Args changed: %v", os.Args)
	}
	for i := range want {
		if os.Args[i] != want[i] {
			t.Errorf("os.Args[%d] = %q, want %q", i, os.Args[i], want[i])
		}
	}
}
