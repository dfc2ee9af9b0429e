package authcore

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimited is the class matched by every rate-limit rejection.
	// Concrete rejections are returned as [*RateLimitError] so callers can
	// read the retry-after; errors.Is(err, ErrRateLimited) matches both.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when an operation references an account
	// that no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountExists is returned by Register for a duplicate email.
	ErrAccountExists = errors.New("account already exists")
	// ErrPasswordPolicy is returned when a new password fails the
	// configured minimum-length policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrResetTokenInvalid collapses "never issued", "expired" and
	// "already consumed" into one signal so the reset-confirm endpoint
	// leaks nothing about token lifetimes.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	// ErrTokenInvalid is returned for access tokens that fail verification.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrRefreshInvalid is returned for refresh tokens that fail
	// verification or reference a deleted account.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrStoreUnavailable marks infrastructure failures (Redis or the user
	// store unreachable). It is never folded into a rejection or an
	// invalid-token result: an outage must not read as a lockout.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrEngineNotReady is returned by Engine methods before Build wiring.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// RateLimitError is the structured rejection returned when a scope's
// fixed window is saturated. RetryAfter is strictly positive and never
// exceeds the scope's window.
type RateLimitError struct {
	Scope      string
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited, retry after %s", e.Scope, e.RetryAfter)
}

// Is makes errors.Is(err, ErrRateLimited) hold for every rejection.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfterSeconds returns the retry hint rounded up to whole seconds,
// suitable for a Retry-After header or a JSON retry_after field.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
