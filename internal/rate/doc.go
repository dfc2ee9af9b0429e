// Package rate implements fixed-window rate limiting on Redis counters.
// The window state machine per key is Unset -> Active -> Saturated ->
// (TTL expiry) -> Unset; increment and expiry-set run as a single
// server-side script so concurrent callers cannot overshoot the limit.
package rate
