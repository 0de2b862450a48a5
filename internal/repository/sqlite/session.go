package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gameforge/gameforge/internal/domain"
)

// SessionRepository implements domain.SessionRepository using SQLite.
// Timestamps are stored as Unix seconds so expiry comparisons happen on
// integers rather than formatted strings.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite-backed SessionRepository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.SQLDB}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.UserID, session.Token, session.CreatedAt.Unix(), session.ExpiresAt.Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateToken
		}
		return fmt.Errorf("insert session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get session id: %w", err)
	}
	session.ID = id
	return nil
}

func (r *SessionRepository) Resolve(ctx context.Context, token string, now time.Time) (*domain.PublicUser, time.Time, error) {
	var (
		user    domain.PublicUser
		role    string
		expires int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.name, u.email, u.role, s.expires_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token = ? AND s.expires_at > ?`,
		token, now.Unix(),
	).Scan(&user.ID, &user.Name, &user.Email, &role, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, domain.ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("resolve session: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, time.Unix(expires, 0).UTC(), nil
}

// Delete removes the session with the given token. Deleting a token that
// does not exist is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *SessionRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE expires_at > ?`, now.Unix()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return n, nil
}
