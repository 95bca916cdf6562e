// Package redisserver serves the key-value protocol over TCP.
//
// Each connection runs its own goroutine: decode one request, submit it
// to the executor, write the reply. Requests must be non-empty arrays of
// bulk strings; anything else, or a frame the decoder rejects, gets a
// "ERR protocol error: ..." reply and the connection is closed.
//
// Connections carry a ULID used in logs. An optional per-connection token
// bucket delays clients that exceed the configured command rate.
package redisserver
