// Command redisharp-server runs the RediSharp key-value store.
//
// It serves RESP clients on port 6379 by default and an admin HTTP API
// with health probes and Prometheus metrics on 127.0.0.1:9121. Data is
// kept in memory and, when --path is given, saved to a snapshot file
// every --save-interval milliseconds and on shutdown.
//
// Usage:
//
//	redisharp-server [--config FILE] [--port 6379] [--path data.resp]
//
// Settings are read from defaults, the YAML file, REDISHARP_* environment
// variables and flags, the last one winning.
package main
