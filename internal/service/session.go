package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gameforge/gameforge/internal/domain"
)

const (
	// DefaultSessionTTL is the lifetime of a session created without "remember me".
	DefaultSessionTTL = 24 * time.Hour
	// DefaultRememberTTL is the lifetime of a "remember me" session.
	DefaultRememberTTL = 30 * 24 * time.Hour
)

const (
	tokenBytes       = 16
	tokenLength      = tokenBytes * 2
	maxTokenAttempts = 3
)

// SessionPolicy holds the two session lifetimes.
type SessionPolicy struct {
	TTL         time.Duration
	RememberTTL time.Duration
}

func (p SessionPolicy) withDefaults() SessionPolicy {
	if p.TTL <= 0 {
		p.TTL = DefaultSessionTTL
	}
	if p.RememberTTL <= 0 {
		p.RememberTTL = DefaultRememberTTL
	}
	return p
}

// Lifetime returns the session duration for the given "remember me" flag.
func (p SessionPolicy) Lifetime(remember bool) time.Duration {
	if remember {
		return p.RememberTTL
	}
	return p.TTL
}

// SessionManager issues, resolves and revokes opaque session tokens.
type SessionManager struct {
	sessions domain.SessionRepository
	policy   SessionPolicy
	clock    Clock
	random   io.Reader
}

// NewSessionManager creates a SessionManager. A nil clock uses the wall clock.
func NewSessionManager(sessions domain.SessionRepository, policy SessionPolicy, clock Clock) *SessionManager {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SessionManager{
		sessions: sessions,
		policy:   policy.withDefaults(),
		clock:    clock,
		random:   rand.Reader,
	}
}

// Policy returns the effective session lifetimes.
func (m *SessionManager) Policy() SessionPolicy {
	return m.policy
}

// Create persists a new session for userID. Timestamps are truncated to
// whole seconds, which is the precision the store keeps.
func (m *SessionManager) Create(ctx context.Context, userID int64, remember bool) (*domain.Session, error) {
	now := m.clock.Now().UTC().Truncate(time.Second)

	for attempt := 1; ; attempt++ {
		token, err := m.newToken()
		if err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}

		session := &domain.Session{
			Token:     token,
			UserID:    userID,
			CreatedAt: now,
			ExpiresAt: now.Add(m.policy.Lifetime(remember)),
		}
		err = m.sessions.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrDuplicateToken) || attempt >= maxTokenAttempts {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
}

// Resolve returns the user owning token, or domain.ErrUnauthenticated when
// the token is unknown, malformed or expired. Expiry is checked here on
// every call, so correctness never depends on the reaper having run.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.PublicUser, error) {
	if !wellFormedToken(token) {
		return nil, domain.ErrUnauthenticated
	}

	now := m.clock.Now().UTC()
	user, expiresAt, err := m.sessions.Resolve(ctx, token, now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if !expiresAt.After(now) {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// Delete revokes token. Unknown tokens are ignored.
func (m *SessionManager) Delete(ctx context.Context, token string) error {
	if !wellFormedToken(token) {
		return nil
	}
	return m.sessions.Delete(ctx, token)
}

// ReapExpired removes every session that has already expired.
func (m *SessionManager) ReapExpired(ctx context.Context) (int64, error) {
	return m.sessions.DeleteExpired(ctx, m.clock.Now().UTC())
}

// CountActive returns the number of unexpired sessions.
func (m *SessionManager) CountActive(ctx context.Context) (int64, error) {
	return m.sessions.CountActive(ctx, m.clock.Now().UTC())
}

func (m *SessionManager) newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(m.random, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// wellFormedToken reports whether token looks like one we issued:
// 32 lowercase hex characters.
func wellFormedToken(token string) bool {
	if len(token) != tokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
