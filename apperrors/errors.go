package apperrors

import (
	"errors"
	"fmt"
)

// Kind is a stable error code surfaced to API clients
type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindInternal        Kind = "INTERNAL"
)

// AppError is a business error with a stable kind and a human-readable message.
// Services return these; the API layer maps kinds to HTTP statuses.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given kind and message
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap creates an AppError that wraps an underlying error
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewUnauthenticated(message string) *AppError {
	return New(KindUnauthenticated, message)
}

func NewForbidden(message string) *AppError {
	return New(KindForbidden, message)
}

func NewNotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func NewConflict(message string) *AppError {
	return New(KindConflict, message)
}

func NewInvalidInput(message string) *AppError {
	return New(KindInvalidInput, message)
}

// KindOf extracts the kind of an error, or KindInternal for unclassified errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
