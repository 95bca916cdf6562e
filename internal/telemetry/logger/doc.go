// Package logger provides structured logging.
//
// It wraps log/slog:
//
//   - logger.go: configuration, the Logger interface and the process default
//   - context.go: carrying a logger and a connection ID through a context
//   - redact.go: masking secrets and truncating stored values in log output
//
// The level is held in a shared slog.LevelVar so it can be changed at
// runtime (the config watcher calls SetLevel when log.level changes).
package logger
