package booking

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so callers can react to them.
type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindValidation             ErrorKind = "VALIDATION"
	KindConflict               ErrorKind = "CONFLICT"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
)

// BookingError is a domain failure. Infrastructure errors are never BookingErrors.
type BookingError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...any) *BookingError {
	return &BookingError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error   { return newError(KindNotFound, format, args...) }
func validation(format string, args ...any) error { return newError(KindValidation, format, args...) }
func conflict(format string, args ...any) error   { return newError(KindConflict, format, args...) }

func invalidTransition(format string, args ...any) error {
	return newError(KindInvalidStateTransition, format, args...)
}

// KindOf returns the kind of a BookingError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}

func hasKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsNotFound(err error) bool          { return hasKind(err, KindNotFound) }
func IsValidation(err error) bool        { return hasKind(err, KindValidation) }
func IsConflict(err error) bool          { return hasKind(err, KindConflict) }
func IsInvalidTransition(err error) bool { return hasKind(err, KindInvalidStateTransition) }
