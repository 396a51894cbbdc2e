package ecode

import (
	"errors"
	"fmt"
)

// Error taxonomy. Module errors wrap exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("invalid")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTooLarge     = errors.New("too large")
	ErrUnavailable  = errors.New("temporarily unavailable")
)

// CodeOf returns the business code matching the taxonomy of err.
func CodeOf(err error) int {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrNotFound):
		return NothingFound
	case errors.Is(err, ErrForbidden):
		return AccessDenied
	case errors.Is(err, ErrConflict):
		return Conflict
	case errors.Is(err, ErrValidation):
		return RequestErr
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized
	case errors.Is(err, ErrTooLarge):
		return PayloadTooLarge
	case errors.Is(err, ErrUnavailable):
		return ServiceUnavailable
	default:
		return ServerErr
	}
}

// kindError is an error with its own message that matches a taxonomy sentinel.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with message msg for which errors.Is(err, kind) holds,
// e.g. New(ErrNotFound, NotExist("board")).
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Newf is New with a formatted message.
func Newf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
