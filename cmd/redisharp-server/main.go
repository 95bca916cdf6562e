package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MattEstHaut/RediSharp/internal/core/command"
	"github.com/MattEstHaut/RediSharp/internal/core/domain"
	"github.com/MattEstHaut/RediSharp/internal/core/service"
	"github.com/MattEstHaut/RediSharp/internal/infra/buildinfo"
	"github.com/MattEstHaut/RediSharp/internal/infra/confloader"
	"github.com/MattEstHaut/RediSharp/internal/infra/shutdown"
	"github.com/MattEstHaut/RediSharp/internal/server/config"
	"github.com/MattEstHaut/RediSharp/internal/server/httpserver"
	"github.com/MattEstHaut/RediSharp/internal/server/redisserver"
	"github.com/MattEstHaut/RediSharp/internal/storage"
	"github.com/MattEstHaut/RediSharp/internal/storage/memory"
	"github.com/MattEstHaut/RediSharp/internal/telemetry/logger"
	"github.com/MattEstHaut/RediSharp/internal/telemetry/metric"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for configuration errors and 1 for anything else.
func exitCode(err error) int {
	if domain.GetErrorCode(err) == domain.ErrInvalidConfig.Code {
		return 2
	}
	return 1
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "redisharp-server",
		Usage:   "In-memory key-value store speaking RESP",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "env-file", Usage: ".env file with REDISHARP_* variables"},
			&cli.StringFlag{Name: "host", Usage: "RESP listen host"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "RESP listen port"},
			&cli.StringFlag{Name: "path", Usage: "snapshot file; the store is in-memory only when empty"},
			&cli.Int64Flag{Name: "save-interval", Usage: "milliseconds between periodic snapshots"},
			&cli.DurationFlag{Name: "sweep-interval", Usage: "pause between expired-key sweeps"},
			&cli.StringFlag{Name: "http-addr", Usage: "admin HTTP listen address"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String("config"), loaderOptions(c))
		},
	}
}

// loaderOptions translates command-line flags into configuration sources.
// Flags override the environment, which overrides the file.
func loaderOptions(c *cli.Context) []confloader.Option {
	var opts []confloader.Option
	if c.IsSet("env-file") {
		opts = append(opts, confloader.WithDotEnv(c.String("env-file")))
	}
	return append(opts, confloader.WithFlags(flagOverrides(c)))
}

func flagOverrides(c *cli.Context) map[string]any {
	flags := make(map[string]any)
	if c.IsSet("host") || c.IsSet("port") {
		host, port, _ := net.SplitHostPort(config.DefaultRedisAddr)
		if c.IsSet("host") {
			host = c.String("host")
		}
		if c.IsSet("port") {
			port = strconv.Itoa(c.Int("port"))
		}
		flags["server.redis.addr"] = net.JoinHostPort(host, port)
	}
	if c.IsSet("path") {
		flags["storage.path"] = c.String("path")
	}
	if c.IsSet("save-interval") {
		flags["storage.save_interval"] = time.Duration(c.Int64("save-interval")) * time.Millisecond
	}
	if c.IsSet("sweep-interval") {
		flags["storage.sweep_interval"] = c.Duration("sweep-interval")
	}
	if c.IsSet("http-addr") {
		flags["server.http.addr"] = c.String("http-addr")
	}
	if c.IsSet("log-level") {
		flags["log.level"] = c.String("log-level")
	}
	return flags
}

func run(ctx context.Context, configFile string, opts []confloader.Option) error {
	cfg, err := loadConfig(configFile, opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogger := logger.Slog(log)

	log.Info("starting redisharp-server",
		"version", buildinfo.Get().Version,
		"commit", buildinfo.Get().Commit,
		"config", configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()
	shutdownHandler := shutdown.NewHandler(shutdownTimeout, slogger)

	if configFile != "" {
		watcher, err := watchLogLevel(configFile, cfg.Log.Level, opts, slogger)
		if err != nil {
			log.Warn("configuration watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	engine, err := storage.Open(storage.Config{
		Path:          cfg.Storage.Path,
		SaveInterval:  cfg.Storage.SaveInterval,
		SweepInterval: cfg.Storage.SweepInterval,
		OnSave:        metrics.SnapshotSaved,
		StoreOptions: []memory.Option{
			memory.WithExpireHook(metrics.KeysExpired),
			memory.WithLogger(slogger),
		},
		Logger: slogger,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	shutdownHandler.OnShutdown("storage", engine.Close)

	executor := service.NewExecutor(engine.Store(), &service.ExecutorConfig{
		QueueWarn: cfg.Executor.QueueWarn,
		Exec:      command.Execute,
		Observer:  metrics,
		Logger:    slogger,
	})
	executor.Start()
	shutdownHandler.OnShutdown("executor", executor.Stop)

	redisServer := redisserver.New(&redisserver.Config{
		Addr:         cfg.Server.Redis.Addr,
		ReadTimeout:  cfg.Server.Redis.ReadTimeout,
		WriteTimeout: cfg.Server.Redis.WriteTimeout,
		IdleTimeout:  cfg.Server.Redis.IdleTimeout,
		RateLimit:    cfg.Server.Redis.RateLimit,
		RateBurst:    cfg.Server.Redis.RateBurst,
		Limits:       resp.DefaultLimits,
	}, executor, metrics, slogger)

	st := &status{store: engine.Store(), exec: executor, redis: redisServer}
	metrics.MustRegister(metric.NewCollector(metric.Source{
		Keys:         st.Keys,
		VolatileKeys: st.VolatileKeys,
		QueueDepth:   st.QueueDepth,
	}))

	if cfg.Server.HTTP.Enabled {
		httpServer := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Status:      st,
			Snapshotter: engine,
			Metrics:     metrics.Handler(),
			AdminToken:  cfg.Server.HTTP.AdminToken,
			Logger:      slogger,
		}), slogger)
		if _, err := httpServer.Start(); err != nil {
			_ = shutdownHandler.Shutdown()
			return fmt.Errorf("start admin http server: %w", err)
		}
		shutdownHandler.OnShutdown("admin http server", httpServer.Shutdown)
	}

	if err := redisServer.Start(ctx); err != nil {
		_ = shutdownHandler.Shutdown()
		return fmt.Errorf("start resp server: %w", err)
	}
	shutdownHandler.OnShutdown("resp server", redisServer.Shutdown)

	log.Info("server started",
		"addr", redisServer.Addr().String(),
		"persistence", engine.Linked())

	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, file, environment and flags, then validates.
func loadConfig(configFile string, opts []confloader.Option) (*config.ServerConfig, error) {
	cfg := config.Default()

	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// watchLogLevel applies log.level edits in the configuration file without
// a restart.
func watchLogLevel(path, level string, opts []confloader.Option, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnKeyChange(path, "log.level", level, opts, func(value string) {
		if !logger.ValidLevel(value) {
			log.Warn("ignoring invalid log level", "level", value)
			return
		}
		logger.SetLevel(value)
	})
	w.StartAsync()
	return w, nil
}

// status adapts the running components to the admin API.
type status struct {
	store *memory.Store
	exec  *service.Executor
	redis *redisserver.Server
}

func (s *status) Keys() int         { return s.store.Count() }
func (s *status) VolatileKeys() int { return s.store.Volatile() }
func (s *status) QueueDepth() int   { return s.exec.QueueDepth() }
func (s *status) Executed() uint64  { return s.exec.Executed() }
func (s *status) Connections() int  { return s.redis.ConnCount() }
func (s *status) Ready() bool       { return s.exec.Running() }
