// Package storage ties the in-memory store to its snapshot file.
//
// Engine loads the snapshot at startup, saves it every SaveInterval and
// once more on Close, and serves on-demand saves. An engine opened without
// a path keeps everything in memory.
package storage
