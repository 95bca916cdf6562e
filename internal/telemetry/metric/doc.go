// Package metric provides Prometheus metrics.
//
//   - prometheus.go: the Registry, its instruments and the /metrics handler
//   - collector.go: a collector reading live gauges (key counts, queue
//     depth) from the running server at scrape time
//
// Each Registry owns a private prometheus.Registry with the Go and process
// collectors registered, so tests can create as many as they like.
package metric
