package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/gameforge/gameforge/internal/repository/sqlite/migrations"
)

// DB wraps the SQLite connection pool and hands out repositories bound to it.
type DB struct {
	SQLDB *sql.DB

	users    *UserRepository
	sessions *SessionRepository
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode, foreign keys and a busy timeout.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps PRAGMAs applied and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.ExecContext(context.Background(), p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{SQLDB: sqlDB}
	db.users = NewUserRepository(db)
	db.sessions = NewSessionRepository(db)
	return db, nil
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SQLDB)
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.SQLDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	return db.SQLDB.Close()
}

// Users returns the credential store.
func (db *DB) Users() *UserRepository {
	return db.users
}

// Sessions returns the session store.
func (db *DB) Sessions() *SessionRepository {
	return db.sessions
}

// isUniqueConstraintError reports whether err is a SQLite unique or
// primary key constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
