package config

import "time"

// ServerConfig is the root configuration for redisharp-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Executor ExecutorSection `koanf:"executor"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection contains the network listeners.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// RedisConfig configures the client-facing RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// Zero disables the corresponding deadline.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RateLimit is the sustained commands per second allowed on one
	// connection. Zero means unlimited.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// HTTPConfig configures the admin HTTP server.
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	// AdminToken, when set, is required as a bearer token on /admin routes.
	AdminToken string `koanf:"admin_token"`
}

// StorageSection configures persistence and expiry.
type StorageSection struct {
	// Path is the snapshot file. Empty keeps the store in memory only.
	Path          string        `koanf:"path"`
	SaveInterval  time.Duration `koanf:"save_interval"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ExecutorSection configures the command executor.
type ExecutorSection struct {
	QueueWarn int `koanf:"queue_warn"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}
