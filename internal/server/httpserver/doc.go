// Package httpserver provides the admin HTTP server.
//
// Routes:
//
//	GET  /health          liveness
//	GET  /ready           readiness (executor accepting commands)
//	GET  /metrics         Prometheus exposition
//	GET  /admin/status    key counts, queue depth, build info
//	POST /admin/snapshot  save the snapshot now (409 without a path)
//
// /admin routes require a bearer token when one is configured.
package httpserver
