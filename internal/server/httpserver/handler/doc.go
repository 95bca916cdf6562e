// Package handler implements the admin HTTP endpoints: health and
// readiness probes, server status and on-demand snapshots.
package handler
