// Package apperr holds the error taxonomy shared by the workflow core.
// Callers match kinds with errors.Is against the sentinels below and read
// field details with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindIllegalTransition      Kind = "ILLEGAL_TRANSITION"
	KindPreconditionFailed     Kind = "PRECONDITION_FAILED"
	KindNotFound               Kind = "NOT_FOUND"
	KindConcurrentModification Kind = "CONCURRENT_MODIFICATION"
	KindForbidden              Kind = "FORBIDDEN"
)

var (
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrPreconditionFailed     = errors.New("precondition failed")
	ErrNotFound               = errors.New("not found")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrForbidden              = errors.New("forbidden")
)

var sentinels = map[Kind]error{
	KindIllegalTransition:      ErrIllegalTransition,
	KindPreconditionFailed:     ErrPreconditionFailed,
	KindNotFound:               ErrNotFound,
	KindConcurrentModification: ErrConcurrentModification,
	KindForbidden:              ErrForbidden,
}

// Error is a recoverable workflow failure. Field is set for validation-style
// failures so the caller can attach the message to an input.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func IllegalTransition(from, to string) *Error {
	return &Error{
		Kind:    KindIllegalTransition,
		Message: fmt.Sprintf("cannot move request from %s to %s", from, to),
	}
}

func Precondition(field, message string) *Error {
	return &Error{Kind: KindPreconditionFailed, Field: field, Message: message}
}

func NotFound(resource, key string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", resource, key)}
}

func ConcurrentModification(resource, key string) *Error {
	return &Error{
		Kind:    KindConcurrentModification,
		Message: fmt.Sprintf("%s %q was changed by another operation, refresh and retry", resource, key),
	}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// KindOf returns the kind of err, or "" for storage and other unclassified
// faults.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// FieldOf returns the field attached to a precondition failure, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
