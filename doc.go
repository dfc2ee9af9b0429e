// Package authcore implements the stateful core of an authentication
// service: registration, credential login with per-IP throttling, JWT
// access/refresh issuance, and a Redis-backed one-time password-reset
// token lifecycle.
//
// The package is the public surface. It exposes [Engine], [Builder],
// [Config], the error taxonomy, and plain request/response value types.
// Coordination logic (rate-limit counters, reset-token storage, token
// generation) lives under internal/ and is never exported.
//
// The engine holds no mutable state of its own; counters and tokens are
// externalized to Redis, which provides the atomicity the engine relies
// on: scripted increment-with-expiry for rate limits, GETDEL for token
// consumption. Engine methods are safe for concurrent use after
// [Builder.Build].
//
// authcore never touches HTTP types. The surrounding request layer
// extracts the client IP ([WithClientIP]), validates input shape, and
// maps the returned errors to status codes: ErrRateLimited to 429,
// ErrResetTokenInvalid to 400, ErrStoreUnavailable to 5xx.
package authcore
