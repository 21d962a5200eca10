// Package apperr defines the error taxonomy shared by every business
// component. Components return *Error unchanged; the API surface maps a
// Kind to an HTTP status at a single boundary point.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories recognized by the system.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// FieldError names the single field a Validation error applies to.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the typed error every business component returns. Handlers never
// construct bare fmt.Errorf for caller-visible failures; they construct one
// of these via the Kind constructors below.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Reason  string // machine-readable sub-reason, e.g. "EmailUnverified", "quota_exceeded"
	cause   error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Wrap attaches a lower-level cause without changing the Kind semantics.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// WithReason attaches a machine-readable sub-reason.
func (e *Error) WithReason(reason string) *Error {
	e.Reason = reason
	return e
}

// Validation builds a KindValidation error, optionally with field-level detail.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// BadRequest builds a KindBadRequest error: a semantic precondition failure
// outside the normal state machine.
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Unauthorized builds a KindUnauthorized error: missing/invalid/expired token.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden builds a KindForbidden error: authorization denial.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound builds a KindNotFound error: entity absent or out of tenant scope.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict builds a KindConflict error: state-transition precondition
// violated, a uniqueness constraint violated, or optimistic concurrency lost.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal builds a KindInternal error: any unclassified failure. Callers
// should Wrap the underlying cause so it reaches the log with a correlation id.
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}

// As extracts an *Error from err, if any is present in its chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err if it (or something it wraps) is an *Error,
// and KindInternal otherwise — every unclassified error is treated as Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
