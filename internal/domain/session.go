package domain

import (
	"context"
	"time"
)

// Session is a login session identified by an opaque token.
// It references its user but does not own it.
type Session struct {
	ID        int64
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ValidAt reports whether the session is still usable at t.
// A session expiring exactly at t is no longer valid.
func (s *Session) ValidAt(t time.Time) bool {
	return s.ExpiresAt.After(t)
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	// Resolve joins the session to its user, ignoring sessions that
	// expire at or before now.
	Resolve(ctx context.Context, token string, now time.Time) (*PublicUser, time.Time, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
}
