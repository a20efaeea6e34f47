// Package session issues and verifies the signed, time-bounded tokens that
// carry a verified identity between requests. Verification is stateless:
// the server keeps no session records, only the signing secret, so logout
// is purely a client-side token discard.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/forttask/forttask/internal/auth"
)

var (
	ErrExpired = errors.New("session expired")
	ErrInvalid = errors.New("invalid session token")
)

// Claims embeds the identity fields alongside the registered JWT claims.
type Claims struct {
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	HouseholdID   int64  `json:"household_id"`
	HouseholdName string `json:"household_name"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a process-wide HS256
// secret loaded once at startup.
type Manager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewManager(secret []byte, lifetime time.Duration) *Manager {
	return &Manager{secret: secret, lifetime: lifetime, now: time.Now}
}

// Issue embeds the identity in a signed token valid for the configured
// lifetime.
func (m *Manager) Issue(id auth.Identity) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:        id.UserID,
		Username:      id.Username,
		HouseholdID:   id.HouseholdID,
		HouseholdName: id.HouseholdName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity first, then expiry, and returns the
// embedded identity. Tokens are never revoked before expiry.
func (m *Manager) Verify(tokenString string) (*auth.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}

	return &auth.Identity{
		UserID:        claims.UserID,
		Username:      claims.Username,
		HouseholdID:   claims.HouseholdID,
		HouseholdName: claims.HouseholdName,
	}, nil
}

// Lifetime reports the configured token lifetime, used to size cookies.
func (m *Manager) Lifetime() time.Duration { return m.lifetime }
