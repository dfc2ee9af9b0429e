package authcore

import (
	"context"
	"errors"
	"fmt"

	"authcore/internal"
	"authcore/internal/rate"
)

// Login verifies credentials and issues a token pair. The per-IP
// throttle runs before credential verification and counts every
// attempt, successful or not: limit reached means rejected regardless
// of whether the password would have matched.
//
// Unknown email and wrong password both return [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, pass string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = internal.NormalizeEmail(email)
	if email == "" || pass == "" {
		e.metrics.inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	if e.config.LoginThrottle.Enabled {
		if ip := clientIPFromContext(ctx); ip != "" {
			policy := rate.Policy{
				Scope:  ScopeLogin,
				Limit:  e.config.LoginThrottle.Limit,
				Window: e.config.LoginThrottle.Window,
			}
			if err := e.allow(ctx, policy, ip, e.loginThrottleMessage(), MetricLoginRateLimited); err != nil {
				return nil, err
			}
		}
	}

	cctx, cancel := e.storeCtx(ctx)
	defer cancel()
	user, err := e.users.GetByEmail(cctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.inc(MetricLoginFailure)
			e.emit(ctx, EventLogin, false, "", ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, e.storeErr(err)
	}

	ok, err := e.hasher.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		e.metrics.inc(MetricLoginFailure)
		e.emit(ctx, EventLogin, false, user.UserID, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	access, refresh, err := e.tokens.CreatePair(user.UserID)
	if err != nil {
		return nil, err
	}

	e.metrics.inc(MetricLoginSuccess)
	e.emit(ctx, EventLogin, true, user.UserID, nil, nil)

	return &AuthResult{
		User:   e.toUser(user),
		Tokens: TokenPair{Access: access, Refresh: refresh},
	}, nil
}

func (e *Engine) loginThrottleMessage() string {
	return fmt.Sprintf(
		"You have exceeded the limit of %d login attempts per %s. Please try again later.",
		e.config.LoginThrottle.Limit,
		formatWindow(e.config.LoginThrottle.Window),
	)
}
