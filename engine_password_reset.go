package authcore

import (
	"context"
	"errors"
	"fmt"

	"authcore/internal"
	"authcore/internal/rate"
	"authcore/internal/stores"
)

// RequestPasswordReset issues a one-time reset token for the account
// matching email. The reset-request throttle is keyed by a sha256 digest
// of the normalized email, never the plaintext, and runs before the
// account lookup so probing costs attempts whether or not the account
// exists.
//
// When the email matches no account the result has Issued set to false
// and carries no token; the request layer answers neutrally so the
// endpoint cannot confirm account existence.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (*PasswordResetChallenge, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = internal.NormalizeEmail(email)
	if email == "" {
		// Shape validation belongs to the request layer; an empty email
		// gets the same neutral answer as an unknown one.
		return &PasswordResetChallenge{Issued: false}, nil
	}

	policy := rate.Policy{
		Scope:  ScopeResetRequest,
		Limit:  e.config.PasswordReset.RequestLimit,
		Window: e.config.PasswordReset.RequestWindow,
	}
	identity := internal.HashIdentity(email)
	if err := e.allow(ctx, policy, identity, e.resetThrottleMessage(), MetricResetRequestRateLimited); err != nil {
		return nil, err
	}

	cctx, cancel := e.storeCtx(ctx)
	defer cancel()
	user, err := e.users.GetByEmail(cctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.inc(MetricResetRequest)
			e.emit(ctx, EventResetRequest, true, "", nil, map[string]string{
				"issued": "false",
			})
			return &PasswordResetChallenge{Issued: false}, nil
		}
		return nil, e.storeErr(err)
	}

	token, err := internal.NewResetToken(e.config.PasswordReset.TokenLength)
	if err != nil {
		return nil, err
	}

	ttl := e.config.PasswordReset.TokenTTL
	ictx, icancel := e.storeCtx(ctx)
	defer icancel()
	if err := e.resets.Issue(ictx, user.UserID, token, ttl); err != nil {
		return nil, e.storeErr(err)
	}

	e.metrics.inc(MetricResetRequest)
	e.emit(ctx, EventResetRequest, true, user.UserID, nil, nil)

	return &PasswordResetChallenge{
		Issued:    true,
		Token:     token,
		TTL:       ttl,
		ExpiresIn: formatWindow(ttl),
	}, nil
}

// ConfirmPasswordReset consumes the token and applies the new password.
//
// Ordering is consume-then-update: the token is spent before the
// password write is attempted, so a failed update can never leave a
// live token behind. Absent, expired, and already-consumed tokens all
// fail with [ErrResetTokenInvalid]; the caller learns nothing about
// which it was.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	if token == "" {
		e.metrics.inc(MetricResetConfirmFailure)
		return ErrResetTokenInvalid
	}
	// Policy runs before consumption: a too-short password must not
	// burn the token.
	if len(newPassword) < e.config.MinPasswordLength {
		e.metrics.inc(MetricResetConfirmFailure)
		e.emit(ctx, EventResetConfirm, false, "", ErrPasswordPolicy, nil)
		return ErrPasswordPolicy
	}

	cctx, cancel := e.storeCtx(ctx)
	defer cancel()
	userID, err := e.resets.Consume(cctx, token)
	if err != nil {
		if errors.Is(err, stores.ErrTokenNotFound) {
			e.metrics.inc(MetricResetConfirmFailure)
			e.emit(ctx, EventResetConfirm, false, "", ErrResetTokenInvalid, nil)
			return ErrResetTokenInvalid
		}
		return e.storeErr(err)
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.metrics.inc(MetricResetConfirmFailure)
		return err
	}

	uctx, ucancel := e.storeCtx(ctx)
	defer ucancel()
	if err := e.users.UpdatePasswordHash(uctx, userID, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.inc(MetricResetConfirmFailure)
			e.emit(ctx, EventResetConfirm, false, userID, ErrUserNotFound, nil)
			return ErrUserNotFound
		}
		return e.storeErr(err)
	}

	e.metrics.inc(MetricResetConfirmSuccess)
	e.emit(ctx, EventResetConfirm, true, userID, nil, nil)
	return nil
}

func (e *Engine) resetThrottleMessage() string {
	return fmt.Sprintf(
		"You have exceeded the limit of %d password reset requests per %s. Please try again later.",
		e.config.PasswordReset.RequestLimit,
		formatWindow(e.config.PasswordReset.RequestWindow),
	)
}
