package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TypeAccess and TypeRefresh are the values of the "typ" claim. A
	// refresh token is never accepted where an access token is expected,
	// and vice versa.
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Config holds token issuance parameters. Secret must be at least 32
// bytes; both token kinds are HS256 signed with it.
type Config struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// Claims is the claim set carried by both token kinds.
type Claims struct {
	UID       string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access/refresh token pairs. Immutable after
// construction; safe for concurrent use.
type Manager struct {
	config Config
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("hs256 secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// CreatePair issues a fresh access/refresh pair for the given subject.
func (m *Manager) CreatePair(uid string) (access, refresh string, err error) {
	access, err = m.create(uid, TypeAccess, m.config.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.create(uid, TypeRefresh, m.config.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseAccess verifies signature, expiry, issuer, and the access "typ".
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TypeAccess)
}

// ParseRefresh verifies signature, expiry, issuer, and the refresh "typ".
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TypeRefresh)
}

// AccessTTL reports the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

func (m *Manager) create(uid, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:       uid,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

func (m *Manager) parse(tokenStr, wantType string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("unexpected token type %q", claims.TokenType)
	}
	if claims.UID == "" {
		return nil, errors.New("missing uid claim")
	}
	return claims, nil
}
