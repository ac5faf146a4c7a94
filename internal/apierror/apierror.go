// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into the stable, machine-checkable categories the
// API exposes. Handlers map a Kind to exactly one HTTP status code.
type Kind string

const (
	// KindValidation — malformed or missing input, user-correctable.
	KindValidation Kind = "validation"
	// KindNotFound — a referenced entity does not exist.
	KindNotFound Kind = "not_found"
	// KindInsufficientStock — an out-movement would drive stock below zero.
	KindInsufficientStock Kind = "insufficient_stock"
	// KindDuplicate — a uniqueness rule was violated (product code,
	// (product, date) stock card, order number).
	KindDuplicate Kind = "duplicate"
	// KindForbidden — the caller's role does not permit the action.
	KindForbidden Kind = "forbidden"
	// KindInternalConsistency — an invariant that should never break did.
	// Always logged; the transaction that detected it is aborted.
	KindInternalConsistency Kind = "internal_consistency"
	// KindUnexpected — anything else. The message is never sent verbatim
	// to untrusted callers.
	KindUnexpected Kind = "unexpected"
)

// Error is the canonical service-layer error. Services return *Error for every
// business failure; handlers translate it with Status and Envelope.
type Error struct {
	Kind   Kind
	Detail string
	err    error // wrapped cause, internal only
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInsufficientStock, Detail: fmt.Sprintf(format, args...)}
}

func Duplicate(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicate, Detail: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Detail: fmt.Sprintf(format, args...)}
}

// InternalConsistency marks a broken invariant. Callers must abort the
// enclosing transaction.
func InternalConsistency(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternalConsistency, Detail: fmt.Sprintf(format, args...)}
}

// Unexpected wraps an arbitrary failure. The cause is kept for logging only.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Detail: "internal server error", err: err}
}

// KindOf extracts the Kind from any error chain; non-API errors are Unexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInsufficientStock, KindDuplicate:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the JSON envelope for all 4xx/5xx responses.
type APIError struct {
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Kind: KindUnexpected, Detail: msg}
}

// Envelope builds the client-facing body for err. Unexpected and
// internal-consistency errors get an opaque detail; everything else keeps its
// human-readable message.
func Envelope(err error) *APIError {
	var ae *Error
	if !errors.As(err, &ae) {
		return &APIError{Kind: KindUnexpected, Detail: "internal server error"}
	}
	switch ae.Kind {
	case KindUnexpected, KindInternalConsistency:
		return &APIError{Kind: ae.Kind, Detail: "internal server error"}
	default:
		return &APIError{Kind: ae.Kind, Detail: ae.Detail}
	}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Kind   Kind              `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Kind: KindValidation, Detail: "validation failed", Fields: fields}
}
