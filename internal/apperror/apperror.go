// Package apperror defines the domain error taxonomy shared by the service
// and handler layers.
//
// Services return *AppError values wrapping one of the sentinels below.
// Handlers never inspect messages; they match with errors.Is and map the
// sentinel to an HTTP status (see handler.writeError).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotInFollowing   = errors.New("not in following")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrStoreUnavailable = errors.New("store unavailable")
)

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable, safe to show to clients
	Field   string // optional: offending input field
	Cause   error  // optional: underlying failure, never shown to clients
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned for bad credentials or a missing session.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func AlreadyFollowing(follower, target string) *AppError {
	return &AppError{
		Err:     ErrAlreadyFollowing,
		Message: fmt.Sprintf("%s already follows %s", follower, target),
	}
}

func NotInFollowing(follower, target string) *AppError {
	return &AppError{
		Err:     ErrNotInFollowing,
		Message: fmt.Sprintf("%s does not follow %s", follower, target),
	}
}

func InvalidOperation(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidOperation,
		Message: message,
	}
}

// StoreUnavailable wraps a data-store failure. The cause is kept for logs and
// errors.Is, but the message stays generic.
func StoreUnavailable(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStoreUnavailable,
		Message: fmt.Sprintf("data store unavailable while %s", op),
		Cause:   cause,
	}
}
