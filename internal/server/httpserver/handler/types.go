package handler

import "time"

// Response is the JSON envelope of every admin response except /metrics.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// StatusResponse is the data of GET /admin/status.
type StatusResponse struct {
	Version      string        `json:"version"`
	Commit       string        `json:"commit"`
	UptimeMillis int64         `json:"uptime_ms"`
	Keys         int           `json:"keys"`
	VolatileKeys int           `json:"volatile_keys"`
	QueueDepth   int           `json:"queue_depth"`
	Executed     uint64        `json:"commands_executed"`
	Connections  int           `json:"connections"`
	Persistence  bool          `json:"persistence"`
	LastSnapshot *SnapshotInfo `json:"last_snapshot,omitempty"`
}

// SnapshotInfo describes a saved snapshot.
type SnapshotInfo struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Checksum  string `json:"checksum"`
	CreatedAt int64  `json:"created_at"`
}
