package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a session that does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session binds a browser session id to a backend bearer token.
type Session struct {
	ID        string
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionStore persists operator sessions.
type SessionStore interface {
	PutSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, sessionID string) (Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Store is a composite interface for dashboard storage concerns.
type Store interface {
	SessionStore
	Close() error
}
