// Package apperr defines the error kinds surfaced by the service layer.
// Every error returned to the HTTP layer carries a Kind, which decides the
// response status, and a message that is safe to show to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	Internal Kind = iota
	NotFound
	Conflict
	InvalidInput
	InvalidState
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InvalidInput:
		return "invalid_input"
	case InvalidState:
		return "invalid_state"
	case Unauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified error.  Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFoundf(format string, args ...any) *Error     { return New(NotFound, format, args...) }
func Conflictf(format string, args ...any) *Error     { return New(Conflict, format, args...) }
func InvalidInputf(format string, args ...any) *Error { return New(InvalidInput, format, args...) }
func InvalidStatef(format string, args ...any) *Error { return New(InvalidState, format, args...) }
func Unauthorizedf(format string, args ...any) *Error { return New(Unauthorized, format, args...) }

// KindOf reports the kind of err.  Errors that were never classified are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing message for err.  Unclassified errors
// never leak their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}

// Status maps a kind to an HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case Conflict, InvalidInput, InvalidState:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
