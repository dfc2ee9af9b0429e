package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Policy describes one rate-limited scope: at most Limit attempts per
// identity within a fixed Window.
type Policy struct {
	Scope  string
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one Allow call. RetryAfter is set only on
// rejection and is always in (0, Window].
type Decision struct {
	Admitted   bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter enforces fixed-window counters in Redis, keyed
// prefix:scope:identity with TTL equal to the window. A counter's
// lifecycle is entirely TTL-driven: the limiter never deletes keys.
type Limiter struct {
	redis  redis.UniversalClient
	prefix string
}

// The increment, the expiry-set on first hit, and the TTL read must be
// one atomic step: a separate INCR/EXPIRE pair can admit more than Limit
// requests under concurrent load, and a counter whose EXPIRE was lost
// would throttle forever.
var allowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, prefix string) *Limiter {
	return &Limiter{
		redis:  redisClient,
		prefix: prefix,
	}
}

// Allow records one attempt for (policy.Scope, identity) and reports
// whether it fits within the window's budget. Redis failures surface as
// [ErrRedisUnavailable], never as a rejection.
func (l *Limiter) Allow(ctx context.Context, policy Policy, identity string) (Decision, error) {
	key := l.prefix + ":" + policy.Scope + ":" + identity

	res, err := allowScript.Run(ctx, l.redis, []string{key}, policy.Window.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("%w: unexpected script reply", ErrRedisUnavailable)
	}

	count, ok1 := res[0].(int64)
	ttlMillis, ok2 := res[1].(int64)
	if !ok1 || !ok2 {
		return Decision{}, fmt.Errorf("%w: unexpected script reply", ErrRedisUnavailable)
	}

	if count <= int64(policy.Limit) {
		return Decision{
			Admitted:  true,
			Remaining: policy.Limit - int(count),
		}, nil
	}

	retryAfter := time.Duration(ttlMillis) * time.Millisecond
	if retryAfter <= 0 || retryAfter > policy.Window {
		// PTTL can report -1 if the key lost its expiry (e.g. a manual
		// PERSIST); fall back to the full window rather than report a
		// nonsensical hint.
		retryAfter = policy.Window
	}

	return Decision{
		Admitted:   false,
		RetryAfter: retryAfter,
	}, nil
}
