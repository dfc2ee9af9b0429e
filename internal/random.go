package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewResetToken returns n characters drawn uniformly from [A-Za-z0-9]
// with crypto/rand. At the 32-character minimum that is ~190 bits of
// entropy, far beyond brute-force reach within a 10-minute TTL.
func NewResetToken(n int) (string, error) {
	if n < 32 {
		return "", errors.New("reset token length must be >= 32")
	}

	var b strings.Builder
	b.Grow(n)

	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(tokenAlphabet[idx.Int64()])
	}

	return b.String(), nil
}

// HashIdentity returns hex(sha256(s)). Rate-limit counters for email
// identities are keyed by this digest so plaintext addresses never
// appear in Redis.
func HashIdentity(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail trims surrounding whitespace and lowercases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
