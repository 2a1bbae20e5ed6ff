// Package session issues and verifies the bearer tokens that authenticate
// every request after login, and tracks which of them are still active.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs time-limited identity tokens and checks them against
// the active-session registry. The registry is authoritative: a revoked
// token fails verification even while its signature is still valid.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	registry Registry

	// bootstrapToken, when non-empty, bypasses signature verification and
	// resolves to the bootstrap admin identity. Test deployments only.
	bootstrapToken string
	bootstrapID    uint

	now func() time.Time
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewTokenService(secret string, ttl time.Duration, registry Registry) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		registry: registry,
		now:      time.Now,
	}
}

// EnableBootstrapToken registers the fixed testing token. It resolves to
// adminID with the admin role without touching the registry.
func (s *TokenService) EnableBootstrapToken(token string, adminID uint) {
	s.bootstrapToken = token
	s.bootstrapID = adminID
}

// Issue signs a token binding userID and role for the configured TTL and
// registers it as an active session.
func (s *TokenService) Issue(ctx context.Context, userID uint, role string) (string, error) {
	now := s.now()
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	if err := s.registry.Put(ctx, token, Entry{UserID: userID, Role: role}, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Verify resolves a token to its identity. The registry is the fast path;
// a token missing there (e.g. after a restart) is re-adopted if its
// signature and expiry still hold. Fails closed on anything else.
func (s *TokenService) Verify(ctx context.Context, token string) (ok bool, userID uint, role string) {
	if token == "" {
		return false, 0, ""
	}
	if s.bootstrapToken != "" && token == s.bootstrapToken {
		return true, s.bootstrapID, "admin"
	}
	e, err := s.registry.Get(ctx, token)
	if err == nil {
		return true, e.UserID, e.Role
	}
	if errors.Is(err, ErrRevoked) {
		return false, 0, ""
	}
	var c claims
	parsed, parseErr := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if parseErr != nil || !parsed.Valid {
		return false, 0, ""
	}
	var uid uint
	if _, scanErr := fmt.Sscanf(c.Subject, "%d", &uid); scanErr != nil {
		return false, 0, ""
	}
	// Re-adopt for the remaining lifetime so revocation works on it too.
	if c.ExpiresAt != nil {
		if remaining := c.ExpiresAt.Time.Sub(s.now()); remaining > 0 {
			_ = s.registry.Put(ctx, token, Entry{UserID: uid, Role: c.Role}, remaining)
		}
	}
	return true, uid, c.Role
}

// Revoke removes a token from the active-session registry. The tombstone
// lives for the full TTL, an upper bound on the token's remaining lifetime.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	return s.registry.Revoke(ctx, token, s.ttl)
}

// RevokeAllForUser revokes every active session of one user, e.g. after the
// account is deleted.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uint) error {
	return s.registry.RevokeAllForUser(ctx, userID, s.ttl)
}
