package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr = "0.0.0.0:6379"
	DefaultHTTPAddr  = "127.0.0.1:9121"

	DefaultSaveInterval  = 5 * time.Minute
	DefaultSweepInterval = 100 * time.Millisecond
	DefaultQueueWarn     = 1024

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr: DefaultRedisAddr,
			},
			HTTP: HTTPConfig{
				Enabled: true,
				Addr:    DefaultHTTPAddr,
			},
		},
		Storage: StorageSection{
			SaveInterval:  DefaultSaveInterval,
			SweepInterval: DefaultSweepInterval,
		},
		Executor: ExecutorSection{
			QueueWarn: DefaultQueueWarn,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
