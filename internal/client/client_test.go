package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameforge/gameforge/internal/client"
	"github.com/gameforge/gameforge/internal/domain"
	"github.com/gameforge/gameforge/internal/handler"
	"github.com/gameforge/gameforge/internal/repository/sqlite"
	"github.com/gameforge/gameforge/internal/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *service.AuthService) {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	sessions := service.NewSessionManager(db.Sessions(), service.SessionPolicy{}, nil)
	auth := service.NewAuthService(db.Users(), sessions, service.NewPasswordHasher(4))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{Auth: auth, DB: db})
	srv := httptest.NewServer(handler.Wrap(mux, nil, ""))
	t.Cleanup(srv.Close)
	return srv, auth
}

func newClient(t *testing.T, srv *httptest.Server) *client.Client {
	t.Helper()
	c, err := client.New(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestClient_RoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	id, err := c.Register(ctx, client.RegisterRequest{Name: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Positive(t, id)

	me, err := c.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Nil(t, me, "register must not log in")

	user, err := c.Login(ctx, "a@x.com", "secret1", false)
	require.NoError(t, err)
	assert.Equal(t, &domain.PublicUser{ID: id, Name: "alice", Email: "a@x.com", Role: domain.RoleUser}, user)

	me, err = c.WhoAmI(ctx)
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, "alice", me.Name)

	profile, msg, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.NotEmpty(t, msg)

	require.NoError(t, c.Logout(ctx))

	me, err = c.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Nil(t, me)

	_, _, err = c.Profile(ctx)
	assert.True(t, client.IsUnauthenticated(err))
}

func TestClient_APIError(t *testing.T) {
	srv, auth := newTestServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	_, err := auth.Register(ctx, service.RegisterInput{Name: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = c.Register(ctx, client.RegisterRequest{Name: "alice", Email: "a@x.com", Password: "secret1"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "An account with that email already exists.", apiErr.Message)

	_, err = c.Login(ctx, "a@x.com", "wrong", false)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, client.IsUnauthenticated(err))
}

func TestClient_LogoutWithoutSession(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t, srv)

	assert.NoError(t, c.Logout(context.Background()))
}

func TestAuthStore_DropsUserAfterServerSideLogout(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	laptop := newClient(t, srv)
	_, err := laptop.Register(ctx, client.RegisterRequest{Name: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	store := client.NewAuthStore(laptop)
	store.Init(ctx)
	require.NoError(t, store.Login(ctx, "a@x.com", "secret1", false))
	require.True(t, store.IsAuthenticated())

	// Revoke the session behind the store's back.
	require.NoError(t, laptop.Logout(ctx))

	_, _, err = laptop.Profile(ctx)
	err = store.Invalidate(err)
	assert.True(t, client.IsUnauthenticated(err))
	assert.False(t, store.IsAuthenticated())
}
