// Package apperr classifies domain failures so the transport layer can map
// them to responses without knowing every domain error.
package apperr

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Kind is the class of a domain failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidState
	KindInsufficientStock
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidState:
		return "invalid_state"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Kinded is implemented by errors that know their class.
type Kinded interface {
	error
	Kind() Kind
}

// Error is a plain classified error. Values are compared by identity, so
// package-level sentinels work with errors.Is.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind returns the class of the error.
func (e *Error) Kind() Kind { return e.kind }

// New returns a classified error with a fixed message.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Validation(msg string) *Error   { return New(KindValidation, msg) }
func InvalidState(msg string) *Error { return New(KindInvalidState, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }

// Validationf formats a validation error.
func Validationf(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// KindOf walks the chain and returns the first classification found.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// Message returns the caller-facing message of a classified error, or
// fallback when err is internal.
func Message(err error, fallback string) string {
	var k Kinded
	if errors.As(err, &k) && k.Kind() != KindInternal {
		return k.Error()
	}
	return fallback
}

// ErrNothingToUpdate is returned by patch operations without fields.
var ErrNothingToUpdate = Validation("no fields provided for update")
