package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gameforge/gameforge/internal/domain"
)

const (
	maxNameLength  = 100
	maxEmailLength = 100
)

// RegisterInput carries the self-service registration form.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	MarketingOptIn bool
}

// LoginInput carries the login form. Identifier is an email or display name.
type LoginInput struct {
	Identifier string
	Password   string
	Remember   bool
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	User    *domain.PublicUser
	Session *domain.Session
}

// AuthService handles registration, login, logout and session resolution.
type AuthService struct {
	users    domain.UserRepository
	sessions *SessionManager
	hasher   *PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, sessions *SessionManager, hasher *PasswordHasher) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
	}
}

// Sessions exposes the session manager backing this service.
func (s *AuthService) Sessions() *SessionManager {
	return s.sessions
}

// Register creates a new account with the user role and returns its id.
// It does not log the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" || email == "" || in.Password == "" {
		return 0, fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidInput)
	}
	if len(name) > maxNameLength {
		return 0, fmt.Errorf("%w: name must be %d characters or fewer", domain.ErrInvalidInput, maxNameLength)
	}
	if len(email) > maxEmailLength || !strings.Contains(email, "@") {
		return 0, fmt.Errorf("%w: email address is not valid", domain.ErrInvalidInput)
	}
	if len(in.Password) > MaxPasswordBytes {
		return 0, fmt.Errorf("%w: password must be %d bytes or fewer", domain.ErrInvalidInput, MaxPasswordBytes)
	}

	// Fast path only; the unique index on users.email settles races.
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return 0, domain.ErrDuplicateEmail
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}

	user := &domain.User{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           domain.RoleUser,
		MarketingOptIn: in.MarketingOptIn,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user.ID, nil
}

// Login verifies credentials and opens a new session. Unknown identifiers
// and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: identifier and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.burn(in.Password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID, in.Remember)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID, "remember", in.Remember)
	return &LoginResult{User: user.Public(), Session: session}, nil
}

// Logout revokes the session behind token. It never fails: storage errors
// are logged and the caller still treats the user as logged out.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		slog.ErrorContext(ctx, "delete session on logout", "error", err)
	}
}

// WhoAmI resolves token to its user. An empty token is not an error and
// returns nil. An unknown or expired token returns domain.ErrUnauthenticated.
func (s *AuthService) WhoAmI(ctx context.Context, token string) (*domain.PublicUser, error) {
	if token == "" {
		return nil, nil
	}
	return s.sessions.Resolve(ctx, token)
}

// Authenticate resolves token for a protected operation. Unlike WhoAmI,
// a missing token is reported as domain.ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.PublicUser, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.sessions.Resolve(ctx, token)
}

// Overview summarizes account and session counts for the admin panel.
type Overview struct {
	Users          int64
	ActiveSessions int64
}

// Overview returns current user and active-session counts.
func (s *AuthService) Overview(ctx context.Context) (*Overview, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.sessions.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{Users: users, ActiveSessions: active}, nil
}
