package util

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrNotFound          = errors.New("resource not found")
	ErrTestNotFound      = errors.New("test not found")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrStoreUnavailable 数据库/缓存等基础设施故障，调用方可重试
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StoreError wraps an infrastructure failure so it matches ErrStoreUnavailable.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// InvalidSubmission wraps a validation detail so it matches ErrInvalidSubmission.
func InvalidSubmission(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidSubmission, fmt.Sprintf(format, args...))
}

func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
