package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gameforge/gameforge/internal/domain"
)

// SeedUser describes an account created by the seeder. Unlike self-service
// registration, the seeder may create admins.
type SeedUser struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// SeedUsers creates the given accounts, skipping any whose email is already
// registered. It is safe to run repeatedly and returns how many were created.
func (s *AuthService) SeedUsers(ctx context.Context, seeds []SeedUser) (int, error) {
	created := 0
	for _, seed := range seeds {
		email := strings.TrimSpace(seed.Email)
		if seed.Name == "" || email == "" || seed.Password == "" {
			return created, fmt.Errorf("%w: seed user needs name, email and password", domain.ErrInvalidInput)
		}
		role := seed.Role
		if role == "" {
			role = domain.RoleUser
		}
		if !role.Valid() {
			return created, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
		}

		hash, err := s.hasher.Hash(seed.Password)
		if err != nil {
			return created, err
		}

		user := &domain.User{
			Name:         seed.Name,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				slog.DebugContext(ctx, "seed user already exists", "email", email)
				continue
			}
			return created, fmt.Errorf("seed user %s: %w", email, err)
		}
		created++
		slog.InfoContext(ctx, "seed user created", "user_id", user.ID, "role", role)
	}
	return created, nil
}
