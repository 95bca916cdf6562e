package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MattEstHaut/RediSharp/internal/core/domain"
	"github.com/MattEstHaut/RediSharp/internal/storage/snapshot"
)

// Status reports live server state.
type Status interface {
	Keys() int
	VolatileKeys() int
	QueueDepth() int
	Executed() uint64
	Connections() int
	Ready() bool
}

// Snapshotter saves the store on demand.
type Snapshotter interface {
	Linked() bool
	Save(ctx context.Context) (*snapshot.Info, error)
	LastSave() *snapshot.Info
}

// Handler serves the admin API.
type Handler struct {
	status  Status
	snap    Snapshotter
	logger  *slog.Logger
	started time.Time
	mux     *http.ServeMux
}

// New creates a Handler.
func New(status Status, snap Snapshotter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		status:  status,
		snap:    snap,
		logger:  logger,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /admin/status", h.handleStatus)
	h.mux.HandleFunc("POST /admin/snapshot", h.handleSnapshot)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message, details))
}

// handleServiceError converts errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		h.logger.Error("unexpected error", "error", err, "path", r.URL.Path)
		h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternal.Code, domain.ErrInternal.Message, nil)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSnapshotNotLinked):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrExecutorStopped):
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("request failed", "error", err, "path", r.URL.Path)
	}

	var details any
	if de.Details != "" {
		details = de.Details
	}
	h.writeError(w, r, status, de.Code, de.Message, details)
}

func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}
