// Package errs provides the unified error type used across the backend.
//
// Every subsystem (dbconn, query, crud, optimize, …) wraps its native errors
// into *errs.Error before returning them to callers. Callers use the Is*
// predicates to handle errors without importing driver-specific packages.
//
// Usage:
//
//	// In the pool layer — wrap native errors:
//	return errs.Wrap(errs.ErrKindConnectionFailed, "Failed to connect to database", pgErr)
//
//	// In a handler — check error kind:
//	if errs.IsInvalidInput(err) {
//	    respondError(w, http.StatusBadRequest, err)
//	}
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// The pool, query, and optimization layers map their native errors to one
// of these kinds, giving handlers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no rows, unknown project, unknown table
	ErrKindConnectionFailed         // cannot reach or authenticate to a database
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // SQL runtime execution error
	ErrKindSyntax                   // SQL syntax error reported by the server
	ErrKindInvalidInput             // bad arguments from the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindSyntax:
		return "syntax_error"
	case ErrKindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all backend subsystems.
// Message is user-presentable; Cause keeps the driver-level error for logs.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an *Error with a formatted message.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a SQL execution failure.
func IsQueryFailed(err error) bool {
	return kindOf(err) == ErrKindQueryFailed
}

// IsSyntax reports whether err is a server-reported SQL syntax error.
func IsSyntax(err error) bool {
	return kindOf(err) == ErrKindSyntax
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// HTTPStatus maps an error kind to the HTTP status its handler should emit.
// Validation problems and bad credentials are the caller's fault (400);
// everything else is a server-side failure (500).
func HTTPStatus(err error) int {
	switch kindOf(err) {
	case ErrKindInvalidInput, ErrKindConnectionFailed:
		return http.StatusBadRequest
	case ErrKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
