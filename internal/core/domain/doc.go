// Package domain holds the error taxonomy shared by the store, the command
// executor, persistence and the servers.
//
// Errors carry a stable code of the form KV-<AREA>-<NNNN> so that logs,
// metrics labels and the admin API can report them without string matching.
package domain
