package handler

import (
	"net/http"
	"time"

	"github.com/MattEstHaut/RediSharp/internal/infra/buildinfo"
	"github.com/MattEstHaut/RediSharp/internal/storage/snapshot"
)

// handleStatus handles GET /admin/status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	h.writeJSON(w, r, http.StatusOK, &StatusResponse{
		Version:      info.Version,
		Commit:       info.Commit,
		UptimeMillis: time.Since(h.started).Milliseconds(),
		Keys:         h.status.Keys(),
		VolatileKeys: h.status.VolatileKeys(),
		QueueDepth:   h.status.QueueDepth(),
		Executed:     h.status.Executed(),
		Connections:  h.status.Connections(),
		Persistence:  h.snap.Linked(),
		LastSnapshot: toSnapshotInfo(h.snap.LastSave()),
	})
}

// handleSnapshot handles POST /admin/snapshot.
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.snap.Save(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.logger.Info("snapshot saved on demand", "path", info.Path, "size_bytes", info.Size)
	h.writeJSON(w, r, http.StatusOK, toSnapshotInfo(info))
}

func toSnapshotInfo(info *snapshot.Info) *SnapshotInfo {
	if info == nil {
		return nil
	}
	return &SnapshotInfo{
		Path:      info.Path,
		Size:      info.Size,
		Checksum:  info.Checksum,
		CreatedAt: info.CreatedAt,
	}
}
