// Package stores holds the Redis-backed state the engine coordinates
// through: currently the one-time password-reset token store. Entries
// are owned by Redis and bounded by TTL; the only explicit deletion is
// token consumption.
package stores
