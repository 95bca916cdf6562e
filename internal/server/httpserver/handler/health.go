package handler

import (
	"net/http"
	"time"
)

// ProbeResponse is the data of GET /health and GET /ready.
type ProbeResponse struct {
	Status       string `json:"status"`
	UptimeMillis int64  `json:"uptime_ms"`
	QueueDepth   int    `json:"queue_depth,omitempty"`
}

// handleHealth reports liveness: the process is serving HTTP.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.probe("alive"))
}

// handleReady reports whether commands are being accepted. It fails once
// the executor has stopped, which happens first during shutdown.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.status.Ready() {
		h.writeError(w, r, http.StatusServiceUnavailable, "KV-SYS-5030", "executor is not accepting commands", nil)
		return
	}
	p := h.probe("ready")
	p.QueueDepth = h.status.QueueDepth()
	h.writeJSON(w, r, http.StatusOK, p)
}

func (h *Handler) probe(status string) *ProbeResponse {
	return &ProbeResponse{Status: status, UptimeMillis: time.Since(h.started).Milliseconds()}
}
