package authcore

import (
	"context"
	"fmt"
	"time"

	"authcore/internal/rate"
	"authcore/internal/stores"
	"authcore/jwt"
	"authcore/password"
)

// Engine is the authentication core. Construct it through [Builder];
// after Build every method is safe for concurrent use. The zero value is
// not usable.
type Engine struct {
	config  Config
	users   UserStore
	hasher  *password.Argon2
	tokens  *jwt.Manager
	limiter *rate.Limiter
	resets  *stores.PasswordResetStore
	metrics *Metrics
	audit   *auditDispatcher
}

func (e *Engine) ready() bool {
	return e != nil &&
		e.users != nil &&
		e.hasher != nil &&
		e.tokens != nil &&
		e.limiter != nil &&
		e.resets != nil
}

// Close drains and stops the audit dispatcher. It does not close the
// Redis client or the user store; the engine does not own them.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// Metrics returns a point-in-time copy of the engine counters.
func (e *Engine) Metrics() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// ValidateAccess verifies an access token and returns its claims.
// Failures of any kind (bad signature, expiry, wrong token type) map to
// [ErrTokenInvalid].
func (e *Engine) ValidateAccess(tokenStr string) (*jwt.Claims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	claims, err := e.tokens.ParseAccess(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

// storeCtx bounds a backing-store round-trip. These are single fast
// commands; a store that cannot answer within the deadline is down.
func (e *Engine) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.config.StoreTimeout)
}

func (e *Engine) storeErr(err error) error {
	e.metrics.inc(MetricStoreUnavailable)
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// allow runs one rate-limit check and converts a rejection into a
// *RateLimitError. Infrastructure failures surface as ErrStoreUnavailable
// so an outage never reads as a lockout.
func (e *Engine) allow(ctx context.Context, policy rate.Policy, identity, message string, metric MetricID) error {
	cctx, cancel := e.storeCtx(ctx)
	defer cancel()

	dec, err := e.limiter.Allow(cctx, policy, identity)
	if err != nil {
		return e.storeErr(err)
	}
	if dec.Admitted {
		return nil
	}

	e.metrics.inc(metric)
	e.emit(ctx, EventRateLimited, false, "", ErrRateLimited, map[string]string{
		"scope": policy.Scope,
	})

	return &RateLimitError{
		Scope:      policy.Scope,
		Message:    message,
		RetryAfter: dec.RetryAfter,
	}
}

func (e *Engine) emit(ctx context.Context, eventType string, success bool, userID string, opErr error, meta map[string]string) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  meta,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}

	e.audit.Emit(ctx, event)
}

// formatWindow renders a duration for throttle messages: "minute",
// "10 minutes", "hour", "90 seconds".
func formatWindow(d time.Duration) string {
	switch {
	case d == time.Minute:
		return "minute"
	case d == time.Hour:
		return "hour"
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		n := d / time.Minute
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	default:
		return fmt.Sprintf("%d seconds", int(d/time.Second))
	}
}

func (e *Engine) toUser(record UserRecord) User {
	return User{
		ID:       record.UserID,
		FullName: record.FullName,
		Email:    record.Email,
	}
}
