package authcore

import (
	"context"
	"time"
)

// UserRecord is the persisted shape of an account as seen by the engine.
// PasswordHash is a PHC-encoded argon2id string produced by the password
// package; the engine never stores or compares plaintext.
type UserRecord struct {
	UserID       string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore is the identity collaborator the engine delegates account
// persistence to. Implementations must return the package sentinels:
// [ErrAccountExists] from Create on a duplicate email, [ErrUserNotFound]
// from lookups and updates that match no account. Any other error is
// treated as an infrastructure failure.
//
// Emails handed to a UserStore are already normalized (trimmed,
// lowercased) by the engine.
type UserStore interface {
	Create(ctx context.Context, user UserRecord) error
	GetByEmail(ctx context.Context, email string) (UserRecord, error)
	GetByID(ctx context.Context, id string) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// User is the caller-facing projection of an account.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// TokenPair carries one JWT access token and one JWT refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterRequest is the input to [Engine.Register]. Shape validation
// (email format, password confirmation) belongs to the request layer;
// the engine enforces normalization and the password-length policy.
type RegisterRequest struct {
	FullName string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login on success.
type AuthResult struct {
	User   User
	Tokens TokenPair
}

// PasswordResetChallenge is the result of [Engine.RequestPasswordReset].
//
// Issued is false when the email matched no account. The request layer is
// expected to answer neutrally in that case ("if the email exists, a
// reset token has been generated") so the endpoint cannot be used to
// probe for accounts. The token is returned directly to the caller
// rather than emailed, a documented demo simplification.
type PasswordResetChallenge struct {
	Issued    bool
	Token     string
	TTL       time.Duration
	ExpiresIn string
}
