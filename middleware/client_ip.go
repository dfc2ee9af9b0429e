package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the caller's address for rate limiting: the first
// entry of X-Forwarded-For when present (the service is expected to run
// behind a trusted proxy), otherwise the connection's remote address
// with the port stripped.
func ClientIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
