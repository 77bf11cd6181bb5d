// Package apperr defines the stable error taxonomy the tool surface maps to
// JSON-RPC error responses. Every error that crosses a component boundary
// that isn't a plain *entity.ValidationError should be one of these.
package apperr

import "fmt"

// Code identifies one of the error kinds an operation can fail with.
type Code string

const (
	// BadInput: validation failed (malformed domain/URL, out-of-range
	// integers, oversized strings).
	BadInput Code = "BAD_INPUT"
	// NoMatch: domain token(s) matched no configured site.
	NoMatch Code = "NO_MATCH"
	// RateLimited: per-domain window exhausted.
	RateLimited Code = "RATE_LIMITED"
	// UpstreamUnavailable: every source in every tier failed or timed out
	// and best-so-far is empty.
	UpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	// Degraded: a partial result; best-so-far is below threshold.
	Degraded Code = "DEGRADED"
	// Internal: invariant violation.
	Internal Code = "INTERNAL"
)

// Error is the concrete error type carrying a stable Code for serialization.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the stable error code for tool-surface serialization.
func (e *Error) Code() Code { return e.code }

// New constructs an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap constructs an *Error that wraps cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{code: code, message: message, cause: cause}
}

// CodeOf extracts the Code from err if it (or something it wraps) is an
// *Error, otherwise returns Internal.
func CodeOf(err error) Code {
	var appErr *Error
	if asError(err, &appErr) {
		return appErr.code
	}
	return Internal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
