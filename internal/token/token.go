// Package token issues and verifies the signed bearer tokens used for
// authentication. Tokens carry the username as subject plus an admin claim
// and are honored until natural expiry; there is no revocation.
package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired indicates the token's embedded expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid indicates a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims is the signed bundle embedded in every access token.
type Claims struct {
	// IsAdmin mirrors the user's admin flag at issue time.
	IsAdmin bool `json:"is_admin"`
	jwtv5.RegisteredClaims
}

// Username returns the subject claim.
func (c *Claims) Username() string { return c.Subject }

// Manager issues and verifies HS256 tokens with a fixed TTL.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager signing with the given symmetric key.
// ttl is the absolute lifetime embedded into every issued token.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a signed token for the given subject and admin flag,
// expiring ttl from now.
func (m *Manager) Issue(username string, isAdmin bool) (string, error) {
	now := m.now()
	claims := Claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   username,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "leafguard",
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string. Expired tokens return
// ErrTokenExpired; everything else that fails verification returns
// ErrTokenInvalid.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
