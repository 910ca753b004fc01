// Package session keeps signed-in users' API tokens server side. The browser
// only holds a signed cookie naming the session.
package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"donationhub/internal/models"
)

// Session is a signed-in user.
type Session struct {
	ID        string
	Token     string
	UserID    string
	Name      string
	Role      models.Role
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsAdmin reports whether the user may open the admin console.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// Store persists sessions. Implementations are safe for concurrent use.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// the backend that issued the token verifies it on every call.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

type contextKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// ContextToken supplies the API token of the request's session.
type ContextToken struct{}

// Token implements api.TokenSource.
func (ContextToken) Token(ctx context.Context) string {
	if s, ok := FromContext(ctx); ok {
		return s.Token
	}
	return ""
}
