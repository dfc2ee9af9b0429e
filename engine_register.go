package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"authcore/internal"
)

// Register creates a new account and returns the user projection plus a
// fresh token pair, matching the login response shape. Duplicate emails
// fail with [ErrAccountExists]; passwords shorter than the configured
// minimum fail with [ErrPasswordPolicy].
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email := internal.NormalizeEmail(req.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if len(req.Password) < e.config.MinPasswordLength {
		e.emit(ctx, EventRegister, false, "", ErrPasswordPolicy, nil)
		return nil, ErrPasswordPolicy
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	record := UserRecord{
		UserID:       uuid.NewString(),
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	cctx, cancel := e.storeCtx(ctx)
	defer cancel()
	if err := e.users.Create(cctx, record); err != nil {
		if errors.Is(err, ErrAccountExists) {
			e.metrics.inc(MetricRegisterDuplicate)
			e.emit(ctx, EventRegister, false, "", ErrAccountExists, nil)
			return nil, ErrAccountExists
		}
		return nil, e.storeErr(err)
	}

	access, refresh, err := e.tokens.CreatePair(record.UserID)
	if err != nil {
		return nil, err
	}

	e.metrics.inc(MetricRegisterSuccess)
	e.emit(ctx, EventRegister, true, record.UserID, nil, nil)

	return &AuthResult{
		User:   e.toUser(record),
		Tokens: TokenPair{Access: access, Refresh: refresh},
	}, nil
}
