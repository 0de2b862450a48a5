package handler

import (
	"net/http"

	"github.com/gameforge/gameforge/internal/domain"
	"github.com/gameforge/gameforge/internal/metrics"
	"github.com/gameforge/gameforge/internal/service"
)

// Deps bundles what the HTTP layer needs. Metrics and Limiter may be nil.
type Deps struct {
	Auth         *service.AuthService
	DB           Pinger
	Metrics      *metrics.Metrics
	Limiter      *service.TokenBucket
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	authHandler := NewAuthHandler(d.Auth, d.Metrics, d.CookieSecure)

	limited := func(outcome func(string), h http.HandlerFunc) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return RateLimit(d.Limiter, func() { outcome(metrics.OutcomeRateLimited) }, h)
	}

	// Public routes.
	mux.Handle("POST /register", limited(d.Metrics.Registration, authHandler.HandleRegister))
	mux.Handle("POST /login", limited(d.Metrics.Login, authHandler.HandleLogin))
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)
	mux.HandleFunc("GET /auth", authHandler.HandleWhoAmI)

	// Protected routes.
	mux.Handle("GET /user/profile", RequireAuth(d.Auth, http.HandlerFunc(authHandler.HandleProfile)))
	mux.Handle("GET /admin/overview", RequireAuth(d.Auth,
		RequireRole(domain.RoleAdmin, http.HandlerFunc(authHandler.HandleAdminOverview))))

	// Operational routes.
	if d.DB != nil {
		mux.HandleFunc("GET /healthz", HandleHealthz(d.DB))
	}
	mux.Handle("GET /metrics", d.Metrics.Handler())
}

// Wrap applies the middleware stack shared by every route.
func Wrap(h http.Handler, m *metrics.Metrics, corsOrigin string) http.Handler {
	return RequestLogger(m, SecurityHeaders(CORS(corsOrigin, h)))
}
