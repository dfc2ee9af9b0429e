package authcore

import (
	"context"
	"errors"
)

// Refresh exchanges a valid refresh token for a fresh access/refresh
// pair. Refresh tokens are stateless JWTs: rotation issues a new pair
// but the old refresh token stays verifiable until its own expiry.
// A token whose subject no longer exists fails with [ErrRefreshInvalid].
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.metrics.inc(MetricRefreshFailure)
		e.emit(ctx, EventRefresh, false, "", ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	cctx, cancel := e.storeCtx(ctx)
	defer cancel()
	user, err := e.users.GetByID(cctx, claims.UID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.inc(MetricRefreshFailure)
			e.emit(ctx, EventRefresh, false, claims.UID, ErrRefreshInvalid, nil)
			return nil, ErrRefreshInvalid
		}
		return nil, e.storeErr(err)
	}

	access, refresh, err := e.tokens.CreatePair(user.UserID)
	if err != nil {
		return nil, err
	}

	e.metrics.inc(MetricRefreshSuccess)
	e.emit(ctx, EventRefresh, true, user.UserID, nil, nil)

	return &TokenPair{Access: access, Refresh: refresh}, nil
}
