// Package service provides business logic for the application.
package service

import (
	"errors"

	"github.com/gitchest/gitchest/internal/toast"
)

// Service errors.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPlatformUserNotFound = errors.New("user not found on platform")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidLogin         = errors.New("invalid login")
	ErrUnsupportedPlatform  = errors.New("platform not supported")
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrDeserialization      = errors.New("stored user data is invalid")
	ErrRateLimited          = errors.New("platform rate limit exceeded")
)

// ErrorKind classifies failures for callers that only react to the category.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindNotFound            ErrorKind = "not_found"
	KindBackendUnavailable  ErrorKind = "backend_unavailable"
	KindDeserialization     ErrorKind = "deserialization_error"
	KindListenerSetupFailed ErrorKind = "listener_setup_failed"
	KindInvalidInput        ErrorKind = "invalid_input"
	KindConflict            ErrorKind = "conflict"
)

// KindOf returns the kind of err. Unclassified errors are reported as
// KindBackendUnavailable.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrPlatformUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrDeserialization):
		return KindDeserialization
	case errors.Is(err, toast.ErrListenerSetup):
		return KindListenerSetupFailed
	case errors.Is(err, ErrInvalidLogin), errors.Is(err, ErrUnsupportedPlatform):
		return KindInvalidInput
	case errors.Is(err, ErrUserExists):
		return KindConflict
	default:
		return KindBackendUnavailable
	}
}
