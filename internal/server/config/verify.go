package config

import (
	"net"
	"os"
	"path/filepath"

	"github.com/MattEstHaut/RediSharp/internal/core/domain"
	"github.com/MattEstHaut/RediSharp/internal/telemetry/logger"
)

// Verify validates the configuration. Errors wrap domain.ErrInvalidConfig.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if cfg.Executor.QueueWarn < 0 {
		return invalid("executor.queue_warn must not be negative")
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
		return err
	}
	if cfg.Redis.ReadTimeout < 0 || cfg.Redis.WriteTimeout < 0 || cfg.Redis.IdleTimeout < 0 {
		return invalid("server.redis timeouts must not be negative")
	}
	if cfg.Redis.RateLimit < 0 {
		return invalid("server.redis.rate_limit must not be negative")
	}
	if cfg.Redis.RateLimit > 0 && cfg.Redis.RateBurst < 1 {
		return invalid("server.redis.rate_burst must be at least 1 when rate_limit is set")
	}

	if !cfg.HTTP.Enabled {
		return nil
	}
	if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
		return err
	}
	if cfg.HTTP.Addr == cfg.Redis.Addr {
		return invalid("server.http.addr and server.redis.addr are both %q", cfg.HTTP.Addr)
	}
	return nil
}

func verifyAddr(field, addr string) error {
	if addr == "" {
		return invalid("%s is required", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return invalid("%s %q is not a host:port address", field, addr).WithCause(err)
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.SweepInterval <= 0 {
		return invalid("storage.sweep_interval must be positive")
	}
	if cfg.Path == "" {
		return nil
	}
	if cfg.SaveInterval <= 0 {
		return invalid("storage.save_interval must be positive when storage.path is set")
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return invalid("cannot create snapshot directory %q", dir).WithCause(err)
	}
	if info, err := os.Stat(cfg.Path); err == nil && info.IsDir() {
		return invalid("storage.path %q is a directory", cfg.Path)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return invalid("log.level %q must be one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
		return nil
	default:
		return invalid("log.format %q must be json or text", cfg.Format)
	}
}

func invalid(format string, args ...any) *domain.DomainError {
	return domain.ErrInvalidConfig.WithDetailsf(format, args...)
}
