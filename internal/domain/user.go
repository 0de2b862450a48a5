package domain

import (
	"context"
	"time"
)

// Role is the authorization level attached to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered GameForge account.
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	MarketingOptIn bool
	CreatedAt      time.Time
}

// PublicUser is the projection of a user that is safe to hand to clients.
// It has no password hash field at all.
type PublicUser struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}

// Public returns the client-safe projection of u.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *PublicUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByIdentifier matches either the email or the display name.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	Count(ctx context.Context) (int64, error)
}
