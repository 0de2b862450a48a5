package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gameforge/gameforge/internal/domain"
)

// AuthAPI is the subset of Client used by AuthStore.
type AuthAPI interface {
	WhoAmI(ctx context.Context) (*domain.PublicUser, error)
	Login(ctx context.Context, identifier, password string, remember bool) (*domain.PublicUser, error)
	Logout(ctx context.Context) error
}

// AuthStore caches the current user for a UI and notifies subscribers
// whenever it changes. It starts in the loading state until Init resolves.
type AuthStore struct {
	api AuthAPI

	mu      sync.RWMutex
	user    *domain.PublicUser
	loading bool

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int

	initOnce sync.Once
}

// NewAuthStore creates a store in the loading state.
func NewAuthStore(api AuthAPI) *AuthStore {
	return &AuthStore{
		api:     api,
		loading: true,
		subs:    make(map[int]func()),
	}
}

// Init asks the server who is logged in. Only the first call does any
// work. Loading ends whether or not the call succeeds; a failure leaves
// the store logged out.
func (s *AuthStore) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		user, err := s.api.WhoAmI(ctx)
		if err != nil {
			slog.WarnContext(ctx, "resolve current user", "error", err)
			user = nil
		}
		s.mu.Lock()
		s.user = user
		s.loading = false
		s.mu.Unlock()
		s.notify()
	})
}

// User returns the current user, or nil.
func (s *AuthStore) User() *domain.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Loading reports whether the initial WhoAmI call is still pending.
func (s *AuthStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsAuthenticated reports whether a user is cached.
func (s *AuthStore) IsAuthenticated() bool {
	return s.User() != nil
}

// IsAdmin reports whether the cached user has the admin role.
func (s *AuthStore) IsAdmin() bool {
	return s.User().IsAdmin()
}

// SetUser replaces the cached user.
func (s *AuthStore) SetUser(u *domain.PublicUser) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	s.notify()
}

// Login logs in through the API and caches the returned user.
func (s *AuthStore) Login(ctx context.Context, identifier, password string, remember bool) error {
	user, err := s.api.Login(ctx, identifier, password, remember)
	if err != nil {
		return err
	}
	s.SetUser(user)
	return nil
}

// Logout revokes the session and clears the cached user. The user is
// cleared even if the server call fails; the error is still returned.
func (s *AuthStore) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	s.SetUser(nil)
	return err
}

// Invalidate clears the cached user when err is a 401 from the server,
// meaning the session expired or was revoked elsewhere. It returns err
// unchanged so callers can wrap API calls with it.
func (s *AuthStore) Invalidate(err error) error {
	if IsUnauthenticated(err) && s.IsAuthenticated() {
		s.SetUser(nil)
	}
	return err
}

// Subscribe registers fn to be called after every state change and
// returns a function that removes it.
func (s *AuthStore) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *AuthStore) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
