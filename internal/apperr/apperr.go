// Package apperr defines the application error taxonomy shared by the ride
// lifecycle core and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	Validation     Kind = iota // malformed or missing input
	Authentication             // missing/invalid/expired credential
	Authorization              // authenticated but not permitted
	NotFound                   // referenced entity absent
	Conflict                   // uniqueness violation
	InvalidState               // operation not valid for current lifecycle state
	Internal                   // unexpected store/runtime failure
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return New(Validation, format, args...)
}

func Authorizationf(format string, args ...any) *Error {
	return New(Authorization, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return New(Conflict, format, args...)
}

func InvalidStatef(format string, args ...any) *Error {
	return New(InvalidState, format, args...)
}

// Status returns the HTTP status for err. Errors outside the taxonomy map to
// 500; their message must not reach the client.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case Validation, InvalidState:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err, substituting fallback for
// anything outside the taxonomy so internals never leak.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return fallback
}
