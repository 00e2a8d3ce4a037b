// Package apperr defines the error taxonomy shared by services and handlers.
// Services return *Error values; the HTTP layer maps kinds to status codes
// at the outermost boundary only.
package apperr

import "errors"

// Kind is a stable, machine-readable error category.
type Kind string

const (
	// Validation marks bad input shape or content, detected before any store access.
	Validation Kind = "validation"
	// Conflict marks a uniqueness violation.
	Conflict Kind = "conflict"
	// Auth marks bad credentials or an invalid/expired token.
	Auth Kind = "auth"
	// Forbidden marks a valid identity with insufficient privilege.
	Forbidden Kind = "forbidden"
	// NotFound marks an absent resource, or one the caller does not own.
	NotFound Kind = "not_found"
	// Store marks an unreachable backing store or a failed query.
	Store Kind = "store"
	// Internal marks anything uncaught.
	Internal Kind = "internal"
)

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	// Kind is the error category.
	Kind Kind
	// Message is safe to return to the caller.
	Message string
	// Err is the underlying cause, logged but never returned to the caller.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error with the given kind and message around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err. A domain error keeps its kind even when
// wrapped further down the chain; anything else is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the caller-safe message of err, or a generic one for
// errors outside the taxonomy.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "an unexpected error occurred"
}

// IsKind reports whether err belongs to the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
