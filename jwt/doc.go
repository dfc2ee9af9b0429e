// Package jwt issues and verifies the HS256 access/refresh token pairs
// used by the authentication engine. Both kinds share one claim set and
// are told apart by the "typ" claim.
package jwt
