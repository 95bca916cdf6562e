package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MattEstHaut/RediSharp/internal/core/domain"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Redis.Addr != DefaultRedisAddr {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Server.Redis.Addr, DefaultRedisAddr)
	}
	if !cfg.Server.HTTP.Enabled {
		t.Error("HTTP should be enabled by default")
	}
	if cfg.Storage.Path != "" {
		t.Errorf("Storage.Path = %q, want in-memory default", cfg.Storage.Path)
	}
	if cfg.Storage.SaveInterval != 5*time.Minute {
		t.Errorf("SaveInterval = %v, want 5m", cfg.Storage.SaveInterval)
	}
	if cfg.Storage.SweepInterval != DefaultSweepInterval {
		t.Errorf("SweepInterval = %v, want %v", cfg.Storage.SweepInterval, DefaultSweepInterval)
	}
	if cfg.Executor.QueueWarn != DefaultQueueWarn {
		t.Errorf("QueueWarn = %d, want %d", cfg.Executor.QueueWarn, DefaultQueueWarn)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Fatalf("Verify(Default()) = %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Server.HTTP.AdminToken = "super-secret-token-1234567890"

	sanitized := Sanitize(cfg)

	if cfg.Server.HTTP.AdminToken != "super-secret-token-1234567890" {
		t.Error("original config should not be modified")
	}
	if sanitized.Server.HTTP.AdminToken == cfg.Server.HTTP.AdminToken {
		t.Error("sanitized config should mask the admin token")
	}
	if len(sanitized.Server.HTTP.AdminToken) != len(cfg.Server.HTTP.AdminToken) {
		t.Errorf("masked length = %d, want %d", len(sanitized.Server.HTTP.AdminToken), len(cfg.Server.HTTP.AdminToken))
	}

	empty := Sanitize(Default())
	if empty.Server.HTTP.AdminToken != "" {
		t.Errorf("empty token should stay empty, got %q", empty.Server.HTTP.AdminToken)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"a", "*"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"abcdef", "ab**ef"},
		{"1234567890", "12******90"},
	}

	for _, tt := range tests {
		if got := mask(tt.input); got != tt.expected {
			t.Errorf("mask(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestVerify_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"empty redis addr", func(c *ServerConfig) { c.Server.Redis.Addr = "" }},
		{"redis addr without port", func(c *ServerConfig) { c.Server.Redis.Addr = "localhost" }},
		{"negative read timeout", func(c *ServerConfig) { c.Server.Redis.ReadTimeout = -time.Second }},
		{"negative rate limit", func(c *ServerConfig) { c.Server.Redis.RateLimit = -1 }},
		{"rate limit without burst", func(c *ServerConfig) { c.Server.Redis.RateLimit = 100 }},
		{"bad http addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "nope" }},
		{"http and redis share addr", func(c *ServerConfig) { c.Server.HTTP.Addr = c.Server.Redis.Addr }},
		{"zero sweep interval", func(c *ServerConfig) { c.Storage.SweepInterval = 0 }},
		{"zero save interval with path", func(c *ServerConfig) {
			c.Storage.Path = filepath.Join(dir, "dump.resp")
			c.Storage.SaveInterval = 0
		}},
		{"path is a directory", func(c *ServerConfig) { c.Storage.Path = dir }},
		{"negative queue warn", func(c *ServerConfig) { c.Executor.QueueWarn = -1 }},
		{"bad log level", func(c *ServerConfig) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *ServerConfig) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("Verify() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestVerify_Valid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"defaults", func(*ServerConfig) {}},
		{"http disabled ignores addr", func(c *ServerConfig) {
			c.Server.HTTP.Enabled = false
			c.Server.HTTP.Addr = ""
		}},
		{"in-memory ignores save interval", func(c *ServerConfig) { c.Storage.SaveInterval = 0 }},
		{"rate limited", func(c *ServerConfig) {
			c.Server.Redis.RateLimit = 1000
			c.Server.Redis.RateBurst = 50
		}},
		{"warning level alias", func(c *ServerConfig) { c.Log.Level = "WARNING" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Verify(cfg); err != nil {
				t.Fatalf("Verify() = %v", err)
			}
		})
	}
}

func TestVerify_CreatesSnapshotDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "data")

	cfg := Default()
	cfg.Storage.Path = filepath.Join(dir, "dump.resp")

	if err := Verify(cfg); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("snapshot directory should have been created: %v", err)
	}
}
