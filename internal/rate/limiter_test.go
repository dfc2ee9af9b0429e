package rate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestAllowWithinLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	limiter := New(rdb, "rl")
	policy := Policy{Scope: "login", Limit: 5, Window: time.Minute}

	for i := 0; i < policy.Limit; i++ {
		dec, err := limiter.Allow(ctx, policy, "10.0.0.1")
		if err != nil {
			t.Fatalf("attempt %d: Allow failed: %v", i+1, err)
		}
		if !dec.Admitted {
			t.Fatalf("attempt %d: expected admission", i+1)
		}
		if want := policy.Limit - (i + 1); dec.Remaining != want {
			t.Fatalf("attempt %d: Remaining = %d, want %d", i+1, dec.Remaining, want)
		}
	}
}

func TestAllowRejectsOverLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	limiter := New(rdb, "rl")
	policy := Policy{Scope: "login", Limit: 5, Window: time.Minute}

	for i := 0; i < policy.Limit; i++ {
		if _, err := limiter.Allow(ctx, policy, "10.0.0.1"); err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
	}

	dec, err := limiter.Allow(ctx, policy, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if dec.Admitted {
		t.Fatal("expected rejection over the limit")
	}
	if dec.RetryAfter <= 0 || dec.RetryAfter > policy.Window {
		t.Fatalf("RetryAfter %s out of (0, %s]", dec.RetryAfter, policy.Window)
	}
}

func TestAllowWindowReset(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	limiter := New(rdb, "rl")
	policy := Policy{Scope: "login", Limit: 2, Window: time.Minute}

	for i := 0; i < policy.Limit+1; i++ {
		if _, err := limiter.Allow(ctx, policy, "10.0.0.1"); err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
	}

	mr.FastForward(policy.Window + time.Second)

	dec, err := limiter.Allow(ctx, policy, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !dec.Admitted {
		t.Fatal("expected a fresh window after expiry")
	}
	if dec.Remaining != policy.Limit-1 {
		t.Fatalf("Remaining = %d, want %d", dec.Remaining, policy.Limit-1)
	}
}

func TestAllowIsolatesIdentitiesAndScopes(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	limiter := New(rdb, "rl")
	login := Policy{Scope: "login", Limit: 1, Window: time.Minute}
	reset := Policy{Scope: "reset-request", Limit: 1, Window: time.Minute}

	if _, err := limiter.Allow(ctx, login, "10.0.0.1"); err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if dec, _ := limiter.Allow(ctx, login, "10.0.0.1"); dec.Admitted {
		t.Fatal("expected second attempt on same identity to be rejected")
	}

	// Other identity, same scope.
	if dec, err := limiter.Allow(ctx, login, "10.0.0.2"); err != nil || !dec.Admitted {
		t.Fatalf("expected other identity to be admitted, admitted=%v err=%v", dec.Admitted, err)
	}
	// Same identity, other scope.
	if dec, err := limiter.Allow(ctx, reset, "10.0.0.1"); err != nil || !dec.Admitted {
		t.Fatalf("expected other scope to be admitted, admitted=%v err=%v", dec.Admitted, err)
	}
}

func TestAllowConcurrentAdmitsExactlyLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	limiter := New(rdb, "rl")
	policy := Policy{Scope: "login", Limit: 5, Window: time.Minute}

	const attempts = 20
	var admitted atomic.Int64
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(attempts)

	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			<-start
			dec, err := limiter.Allow(ctx, policy, "10.0.0.1")
			if err != nil {
				t.Errorf("Allow failed: %v", err)
				return
			}
			if dec.Admitted {
				admitted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := admitted.Load(); got != int64(policy.Limit) {
		t.Fatalf("admitted %d of %d concurrent attempts, want exactly %d", got, attempts, policy.Limit)
	}
}

func TestAllowRedisUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	limiter := New(rdb, "rl")
	policy := Policy{Scope: "login", Limit: 5, Window: time.Minute}

	mr.Close()

	_, err := limiter.Allow(ctx, policy, "10.0.0.1")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
