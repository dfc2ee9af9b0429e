package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrTokenNotFound covers absent, expired, and already-consumed
	// tokens alike. The store relies on Redis TTL eviction, so an expired
	// token is literally absent by the time anyone asks.
	ErrTokenNotFound = errors.New("reset token not found")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("reset store redis unavailable")
)

// PasswordResetStore keeps one-time password-reset tokens in Redis.
//
// Layout: <prefix>:t:<token> -> userID carries the authoritative entry;
// <prefix>:u:<userID> -> token is an index used to invalidate a user's
// previous token on reissue. Both share the token TTL.
type PasswordResetStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewPasswordResetStore(redisClient redis.UniversalClient, prefix string) *PasswordResetStore {
	return &PasswordResetStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *PasswordResetStore) tokenKey(token string) string {
	return s.prefix + ":t:" + token
}

func (s *PasswordResetStore) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

// Reading the previous token and repointing the index must be one
// atomic step: with a separate read, concurrent reissues for the same
// user each delete only the token they observed and every other new
// token survives until TTL.
var issueScript = redis.NewScript(`
local prev = redis.call("GET", KEYS[1])
if prev then
	redis.call("DEL", ARGV[4] .. prev)
end
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
redis.call("SET", KEYS[1], ARGV[3], "PX", ARGV[2])
return 1
`)

// Issue stores token -> userID with the given TTL and repoints the
// per-user index, deleting the user's previous outstanding token so at
// most one token per user validates at any time.
func (s *PasswordResetStore) Issue(ctx context.Context, userID, token string, ttl time.Duration) error {
	keys := []string{s.userKey(userID), s.tokenKey(token)}
	err := issueScript.Run(ctx, s.redis, keys,
		userID, ttl.Milliseconds(), token, s.prefix+":t:",
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Consume atomically removes the token and returns the user it
// authorizes. GETDEL guarantees that of any number of concurrent calls
// with the same token exactly one succeeds; the rest see
// [ErrTokenNotFound].
func (s *PasswordResetStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.redis.GetDel(ctx, s.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Best-effort index cleanup. If it fails the index simply rides out
	// its TTL; a stale index entry pointing at a consumed token can no
	// longer validate anything.
	current, err := s.redis.Get(ctx, s.userKey(userID)).Result()
	if err == nil && current == token {
		_ = s.redis.Del(ctx, s.userKey(userID)).Err()
	}

	return userID, nil
}
