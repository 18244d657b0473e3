// Package apperror defines the operational error taxonomy shared by the
// application services and the HTTP error boundary.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindNotFound
	KindConflict
	KindTooLarge
	KindUnavailable
)

// Violation is a single failed field constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an operational error: an expected failure whose Message is safe to
// show to clients.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	return e.Kind.Status()
}

func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string, violations ...Violation) *Error {
	return &Error{Kind: KindValidation, Message: msg, Violations: violations}
}

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func Unavailable(msg string) *Error     { return New(KindUnavailable, msg) }

// As extracts an operational error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
