package client

import (
	"slices"

	"github.com/gameforge/gameforge/internal/domain"
)

const (
	msgLoginRequired = "Please log in to access this page"
	msgForbidden     = "You do not have permission to access this page"
)

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string
	Message  string
}

// Guard decides whether the current user may view a protected page.
type Guard struct {
	Store     *AuthStore
	LoginPath string
	Fallback  string
}

// NewGuard creates a Guard redirecting to /login and /.
func NewGuard(store *AuthStore) *Guard {
	return &Guard{Store: store, LoginPath: "/login", Fallback: "/"}
}

// Check evaluates access for a page that requires one of requiredRoles,
// or any logged-in user when none are given. Callers should wait for the
// store to finish loading first; while it is loading, Check denies without
// a redirect.
func (g *Guard) Check(requiredRoles ...domain.Role) Decision {
	if g.Store.Loading() {
		return Decision{}
	}

	user := g.Store.User()
	if user == nil {
		return Decision{Redirect: g.LoginPath, Message: msgLoginRequired}
	}
	if len(requiredRoles) > 0 && !slices.Contains(requiredRoles, user.Role) {
		return Decision{Redirect: g.Fallback, Message: msgForbidden}
	}
	return Decision{Allow: true}
}
