package rate

import "errors"

// ErrRedisUnavailable wraps every Redis transport failure seen by the
// limiter. The root engine maps it to its infrastructure error class so
// an outage is never mistaken for a rejection.
var ErrRedisUnavailable = errors.New("rate limiter redis unavailable")
