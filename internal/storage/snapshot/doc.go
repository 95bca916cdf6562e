// Package snapshot writes and reads the snapshot file.
//
// A snapshot file holds exactly one encoded protocol value and nothing
// else. Save never exposes a partial file at the target path:
//
//	<path>.tmp   written, flushed and fsynced
//	<path>       replaced by rename(2), then the directory is fsynced
//
// A crash at any point leaves either the previous snapshot or the new one
// at <path>; a stale <path>.tmp is overwritten by the next Save.
package snapshot
