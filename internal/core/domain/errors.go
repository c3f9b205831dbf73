package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. The HTTP layer maps each of these to a deterministic
// result classification; services wrap them with context via %w.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user with this email already exists")
	ErrTokenExpired        = errors.New("token has expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrForbidden           = errors.New("access forbidden")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountNotOwned     = errors.New("account not owned by user")
	ErrAccountNotActive    = errors.New("both accounts must be active for transfer")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSameAccount         = errors.New("sender and receiver accounts must differ")
	ErrInvalidTransition   = errors.New("invalid account status transition")
	ErrDuplicateKey        = errors.New("idempotency key already used")
	ErrEntryNotFound       = errors.New("audit entry not found")
	ErrHashMissing         = errors.New("hash not finalised")
	ErrHashMismatch        = errors.New("hash mismatch")
)

// RateLimitError carries the remaining lockout so callers can surface a
// retry-after hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %ds", int(e.RetryAfter.Seconds()))
}

// PasswordPolicyError reports which rule a candidate password broke.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return e.Reason
}

// DependencyError marks a failed cross-component call. On the auth and
// permission paths it denies the operation; on the audit path it is swallowed.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }
