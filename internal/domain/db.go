package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// The backend owns its migrations; callers open it at startup and
// close it on shutdown.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
