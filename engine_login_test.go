package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoginSuccess(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	seedUser(t, users, "alice@example.com", "correct-horse")
	engine := newTestEngine(t, rdb, users, testConfig())

	result, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user email %q", result.User.Email)
	}
	if result.Tokens.Access == "" || result.Tokens.Refresh == "" {
		t.Fatal("expected a non-empty token pair")
	}

	claims, err := engine.ValidateAccess(result.Tokens.Access)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if claims.UID != result.User.ID {
		t.Fatalf("access token uid %q does not match user %q", claims.UID, result.User.ID)
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	seedUser(t, users, "alice@example.com", "correct-horse")
	engine := newTestEngine(t, rdb, users, testConfig())

	if _, err := engine.Login(ctx, "  Alice@Example.COM ", "correct-horse"); err != nil {
		t.Fatalf("expected normalized email to match, got %v", err)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	seedUser(t, users, "alice@example.com", "correct-horse")
	engine := newTestEngine(t, rdb, users, testConfig())

	// Unknown account and wrong password must be indistinguishable.
	if _, err := engine.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.Login(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty input: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginThrottlePerIP(t *testing.T) {
	_, rdb := newTestRedis(t)

	users := newMockUserStore()
	seedUser(t, users, "alice@example.com", "correct-horse")

	cfg := testConfig()
	engine := newTestEngine(t, rdb, users, cfg)

	ctx := WithClientIP(context.Background(), "10.0.0.1")

	// Failed attempts count against the budget just like successes.
	for i := 0; i < cfg.LoginThrottle.Limit; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Over the limit the right password no longer helps.
	_, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected *RateLimitError, got %T", err)
	}
	if rateErr.Scope != ScopeLogin {
		t.Fatalf("expected scope %q, got %q", ScopeLogin, rateErr.Scope)
	}
	if rateErr.RetryAfter <= 0 || rateErr.RetryAfter > cfg.LoginThrottle.Window {
		t.Fatalf("RetryAfter %s out of (0, %s]", rateErr.RetryAfter, cfg.LoginThrottle.Window)
	}

	// A different client IP has its own budget.
	otherCtx := WithClientIP(context.Background(), "10.0.0.2")
	if _, err := engine.Login(otherCtx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("expected other IP to be admitted, got %v", err)
	}
}

func TestLoginThrottleWindowExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)

	users := newMockUserStore()
	seedUser(t, users, "alice@example.com", "correct-horse")

	cfg := testConfig()
	engine := newTestEngine(t, rdb, users, cfg)

	ctx := WithClientIP(context.Background(), "10.0.0.1")
	for i := 0; i < cfg.LoginThrottle.Limit; i++ {
		_, _ = engine.Login(ctx, "alice@example.com", "wrong-password")
	}
	if _, err := engine.Login(ctx, "alice@example.com", "correct-horse"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(cfg.LoginThrottle.Window + time.Second)

	if _, err := engine.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("expected login after window expiry to succeed, got %v", err)
	}
}

func TestLoginWithoutClientIPSkipsThrottle(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	seedUser(t, users, "alice@example.com", "correct-horse")

	cfg := testConfig()
	engine := newTestEngine(t, rdb, users, cfg)

	for i := 0; i < cfg.LoginThrottle.Limit+3; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
			t.Fatalf("attempt %d: expected success without an IP, got %v", i+1, err)
		}
	}
}

func TestLoginRedisOutageIsNotALockout(t *testing.T) {
	mr, rdb := newTestRedis(t)

	users := newMockUserStore()
	seedUser(t, users, "alice@example.com", "correct-horse")
	engine := newTestEngine(t, rdb, users, testConfig())

	mr.Close()

	_, err := engine.Login(WithClientIP(context.Background(), "10.0.0.1"), "alice@example.com", "correct-horse")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, ErrRateLimited) {
		t.Fatal("an outage must never surface as a rate-limit rejection")
	}
}

func TestLoginUserStoreFailure(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	users.getErr = errors.New("connection refused")
	engine := newTestEngine(t, rdb, users, testConfig())

	_, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("a store failure must not read as bad credentials")
	}
}
