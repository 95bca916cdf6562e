package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error with a stable code.
type DomainError struct {
	Code    string // e.g. "KV-SNAP-4220"
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithDetailsf is WithDetails with fmt.Sprintf formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// GetErrorCode extracts the code from err, or "" if err is not a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Snapshot errors (SNAP).
var (
	// ErrSnapshotFormat indicates a snapshot that decodes but does not have
	// the {"data": Map, "ex": Map} shape.
	ErrSnapshotFormat = NewDomainError("KV-SNAP-4220", "invalid snapshot format")

	// ErrSnapshotNotLinked indicates an on-demand save on a store with no path.
	ErrSnapshotNotLinked = NewDomainError("KV-SNAP-4090", "store is not linked to a snapshot path")

	// ErrSnapshotIO indicates the snapshot file could not be read or written.
	ErrSnapshotIO = NewDomainError("KV-SNAP-5000", "snapshot io failure")
)

// Executor errors (EXEC).
var (
	// ErrExecutorStopped indicates a submission after Stop.
	ErrExecutorStopped = NewDomainError("KV-EXEC-5030", "executor stopped")
)

// Configuration errors (CFG).
var (
	// ErrInvalidConfig indicates a configuration that failed verification.
	ErrInvalidConfig = NewDomainError("KV-CFG-4000", "invalid configuration")
)

// System errors (SYS).
var (
	// ErrInternal indicates an unexpected fault inside command execution.
	ErrInternal = NewDomainError("KV-SYS-5000", "internal error")
)
