package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport-level mapping.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindIntegrity    ErrorKind = "integrity"
	KindUnavailable  ErrorKind = "unavailable"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
)

// Error is a typed domain error. Coordinators and repositories only ever
// surface this type; raw driver errors never cross the application boundary.
type Error struct {
	Kind    ErrorKind
	Message string

	// Constraint names the violated store constraint for integrity errors.
	Constraint string

	// ItemIDs lists the items that caused a conflict or validation failure.
	ItemIDs []uint64

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches a low-level cause for logging without changing the kind.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// NewValidationError reports a violated precondition; the caller can recover
// by adjusting its input.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// NewConflictError reports a lost race: another transaction claimed a
// resource between check and act. The caller may retry with fresh state.
func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NewItemConflictError reports which items were claimed by a concurrent
// booking while this one was waiting for its locks.
func NewItemConflictError(itemIDs []uint64) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("items no longer available, claimed by a concurrent booking: %v", itemIDs),
		ItemIDs: itemIDs,
	}
}

// NewUnavailableItemsError reports cart items that are not available for
// booking, found before any lock was taken.
func NewUnavailableItemsError(itemIDs []uint64) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("items not available for booking: %v", itemIDs),
		ItemIDs: itemIDs,
	}
}

// NewIntegrityError reports a mutation rejected by a store constraint.
func NewIntegrityError(constraint, msg string) *Error {
	return &Error{Kind: KindIntegrity, Message: msg, Constraint: constraint}
}

// NewUnavailableError reports that the store is unreachable or aborted the
// transaction at the infrastructure level. The whole operation may be retried.
func NewUnavailableError(msg string) *Error {
	return &Error{Kind: KindUnavailable, Message: msg}
}

// NewForbiddenError reports an authenticated caller lacking permission.
func NewForbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NewUnauthorizedError reports a missing or invalid credential.
func NewUnauthorizedError(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// NewInvalidStateError reports a disallowed status transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("invalid status transition from %q to %q", from, to),
	}
}

// KindOf returns the kind of err if it is a domain error, or "" otherwise.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
