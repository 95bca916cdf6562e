package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/MattEstHaut/RediSharp/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Status      handler.Status
	Snapshotter handler.Snapshotter

	// Metrics serves GET /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	// AdminToken protects /admin routes when set.
	AdminToken string

	Logger *slog.Logger
}

// NewRouter builds the admin HTTP handler.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := handler.New(cfg.Status, cfg.Snapshotter, logger)

	mux := http.NewServeMux()

	// Probes and metrics stay open for orchestrators and scrapers.
	mux.Handle("GET /health", h)
	mux.Handle("GET /ready", h)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	mux.Handle("/admin/", Chain(h, AdminAuth(cfg.AdminToken)))

	return Chain(mux,
		Recover(logger),
		RequestID(),
		AccessLog(logger),
	)
}
