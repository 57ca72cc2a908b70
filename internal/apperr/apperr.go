// Package apperr classifies errors so handlers can map them to
// HTTP status codes without inspecting message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the error class.
type Kind int

const (
	// KindValidation covers missing or malformed input.
	KindValidation Kind = iota
	// KindAuth covers missing, invalid or expired credentials.
	KindAuth
	// KindNotFound covers entities that are absent or not owned by
	// the caller; both cases look identical to the client.
	KindNotFound
	// KindConflict covers duplicate email and oversell attempts.
	KindConflict
	// KindStorage covers persistence failures.
	KindStorage
)

// Error carries a kind, a client-facing message and an optional cause.
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

// Is lets sentinel errors match by kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Validation returns a new validation error with the given message.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Auth returns a new authentication error with the given message.
func Auth(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }

// NotFound returns a new not-found error with the given message.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Conflict returns a new conflict error with the given message.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Storage wraps a persistence failure. The message shown to the
// client stays generic; the cause is kept for logging.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage error", Err: err}
}

// ErrInsufficientStock is returned when a sell request exceeds the
// available quantity.
var ErrInsufficientStock = Conflict("insufficient stock")

// KindOf extracts the kind from err, defaulting to KindStorage for
// errors that did not come through this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
