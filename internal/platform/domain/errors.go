package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError for callers and transport adapters.
type ErrorKind string

const (
	KindInvalidRequest     ErrorKind = "invalid_request"
	KindNotFound           ErrorKind = "not_found"
	KindRoomUnavailable    ErrorKind = "room_unavailable"
	KindBackendUnavailable ErrorKind = "backend_unavailable"
	KindTransactionFailure ErrorKind = "transaction_failure"
	KindInvalidState       ErrorKind = "invalid_state"
	KindConflict           ErrorKind = "conflict"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindInternal           ErrorKind = "internal"
)

// AppError is the structured error every service operation returns on failure.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewValidationError reports malformed input (unknown ids, bad intervals, unparseable dates).
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindInvalidRequest, Message: message}
}

// NewNotFoundError reports a missing entity of the given type.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewRoomUnavailableError reports that committing would violate the no-overlap invariant.
func NewRoomUnavailableError(message string) *AppError {
	return &AppError{Kind: KindRoomUnavailable, Message: message}
}

// NewBackendUnavailableError reports that the storage backend could not be reached.
func NewBackendUnavailableError(message string, err error) *AppError {
	return &AppError{Kind: KindBackendUnavailable, Message: message, Err: err}
}

// NewTransactionFailureError reports a unit of work that could not be completed.
func NewTransactionFailureError(message string, err error) *AppError {
	return &AppError{Kind: KindTransactionFailure, Message: message, Err: err}
}

// NewInvalidStateError reports a forbidden status transition.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewConflictError reports an optimistic locking failure.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewUnauthorizedError reports missing or invalid credentials.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// NewForbiddenError reports an authenticated caller without the required role.
func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
