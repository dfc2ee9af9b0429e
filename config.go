package authcore

import (
	"errors"
	"fmt"
	"time"

	"authcore/password"
)

// Rate-limiter scope names. Each scope carries its own limit, window,
// and identity kind; counters for different scopes never collide.
const (
	// ScopeLogin throttles login attempts per client IP.
	ScopeLogin = "login"
	// ScopeResetRequest throttles password-reset requests per hashed email.
	ScopeResetRequest = "reset-request"
)

// JWTConfig controls access/refresh token issuance. Tokens are HS256
// signed with Secret.
type JWTConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// LoginThrottleConfig bounds login attempts per client IP within a fixed
// window. When the context carries no client IP the check is skipped;
// the request layer is responsible for always attaching one in
// production.
type LoginThrottleConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// PasswordResetConfig controls the reset-token lifecycle and the
// reset-request throttle.
type PasswordResetConfig struct {
	// TokenTTL is the reset token lifetime. Expiry is enforced by the
	// store's native TTL; the engine never sweeps.
	TokenTTL time.Duration
	// TokenLength is the token length in characters. Tokens are drawn
	// from [A-Za-z0-9] with crypto/rand.
	TokenLength int
	// RequestLimit / RequestWindow throttle reset requests per hashed
	// email address.
	RequestLimit  int
	RequestWindow time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking callers when the
	// buffer is saturated.
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// Config is the full engine configuration. Zero value is not usable;
// start from [DefaultConfig].
type Config struct {
	// KeyPrefix namespaces every Redis key the engine writes.
	KeyPrefix string
	// StoreTimeout bounds each Redis round-trip. Store operations are
	// single fast commands; anything slower than this is treated as an
	// outage, not waited out.
	StoreTimeout time.Duration
	// MinPasswordLength applies to Register and ConfirmPasswordReset.
	MinPasswordLength int

	JWT           JWTConfig
	Password      password.Config
	LoginThrottle LoginThrottleConfig
	PasswordReset PasswordResetConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

// DefaultConfig returns the production preset: login throttled at 5
// attempts per minute per IP, reset requests at 3 per hour per hashed
// email, reset tokens of 32 characters living 10 minutes.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:         "auth",
		StoreTimeout:      500 * time.Millisecond,
		MinPasswordLength: 8,
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 24 * time.Hour,
			Leeway:     30 * time.Second,
		},
		Password: password.Config{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		LoginThrottle: LoginThrottleConfig{
			Enabled: true,
			Limit:   5,
			Window:  time.Minute,
		},
		PasswordReset: PasswordResetConfig{
			TokenTTL:      10 * time.Minute,
			TokenLength:   32,
			RequestLimit:  3,
			RequestWindow: time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate rejects configurations the engine cannot run safely with.
func (c *Config) Validate() error {
	if c.KeyPrefix == "" {
		return errors.New("KeyPrefix must not be empty")
	}
	if c.StoreTimeout <= 0 || c.StoreTimeout > 5*time.Second {
		return errors.New("StoreTimeout must be in (0s, 5s]")
	}
	if c.MinPasswordLength < 8 {
		return errors.New("MinPasswordLength must be >= 8")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT.Secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT.AccessTTL must be positive")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("JWT.RefreshTTL must exceed JWT.AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT.Leeway must be in [0s, 2m]")
	}
	if c.LoginThrottle.Enabled {
		if c.LoginThrottle.Limit <= 0 {
			return errors.New("LoginThrottle.Limit must be positive")
		}
		if c.LoginThrottle.Window < time.Second {
			return errors.New("LoginThrottle.Window must be at least 1s")
		}
	}
	if c.PasswordReset.TokenTTL < time.Minute {
		return errors.New("PasswordReset.TokenTTL must be at least 1m")
	}
	if c.PasswordReset.TokenLength < 32 {
		return fmt.Errorf("PasswordReset.TokenLength must be >= 32, got %d", c.PasswordReset.TokenLength)
	}
	if c.PasswordReset.RequestLimit <= 0 {
		return errors.New("PasswordReset.RequestLimit must be positive")
	}
	if c.PasswordReset.RequestWindow < time.Second {
		return errors.New("PasswordReset.RequestWindow must be at least 1s")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	return out
}
