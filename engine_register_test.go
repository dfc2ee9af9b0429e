package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterSuccess(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	engine := newTestEngine(t, rdb, users, testConfig())

	result, err := engine.Register(ctx, RegisterRequest{
		FullName: "Alice Example",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.User.ID == "" {
		t.Fatal("expected a generated user ID")
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", result.User.Email)
	}
	if result.Tokens.Access == "" || result.Tokens.Refresh == "" {
		t.Fatal("expected a token pair on registration")
	}

	record := users.get(result.User.ID)
	if record.PasswordHash == "" || record.PasswordHash == "correct-horse" {
		t.Fatal("expected the stored password to be hashed")
	}
	ok, err := newTestHasher(t).Verify("correct-horse", record.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify, ok=%v err=%v", ok, err)
	}

	// The new account can log in immediately.
	if _, err := engine.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("login after register failed: %v", err)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	engine := newTestEngine(t, rdb, users, testConfig())

	result, err := engine.Register(ctx, RegisterRequest{
		Email:    "  Bob@Example.COM ",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.User.Email != "bob@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	engine := newTestEngine(t, rdb, users, testConfig())

	req := RegisterRequest{Email: "alice@example.com", Password: "correct-horse"}
	if _, err := engine.Register(ctx, req); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	// Same address with different casing is still a duplicate.
	req.Email = "ALICE@example.com"
	if _, err := engine.Register(ctx, req); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	engine := newTestEngine(t, rdb, users, testConfig())

	_, err := engine.Register(ctx, RegisterRequest{
		Email:    "alice@example.com",
		Password: "short",
	})
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
	if len(users.byEmail) != 0 {
		t.Fatal("expected no account to be created")
	}
}

func TestRegisterEmptyEmail(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	engine := newTestEngine(t, rdb, newMockUserStore(), testConfig())

	if _, err := engine.Register(ctx, RegisterRequest{Email: "   ", Password: "correct-horse"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterUserStoreFailure(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	users := newMockUserStore()
	users.createErr = errors.New("connection refused")
	engine := newTestEngine(t, rdb, users, testConfig())

	_, err := engine.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "correct-horse"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
