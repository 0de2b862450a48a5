package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gameforge/gameforge/internal/handler"
	"github.com/gameforge/gameforge/internal/repository/sqlite"
	"github.com/gameforge/gameforge/internal/service"
)

// fakeClock starts at the real current second so cookie expiry, which the
// client judges by wall time, stays meaningful.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db    *sqlite.DB
	auth  *service.AuthService
	clock *fakeClock
	srv   *httptest.Server
}

func newTestServices(t *testing.T) (*sqlite.DB, *service.AuthService, *fakeClock) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := newFakeClock()
	sessions := service.NewSessionManager(db.Sessions(), service.SessionPolicy{}, clock)
	auth := service.NewAuthService(db.Users(), sessions, service.NewPasswordHasher(4))
	return db, auth, clock
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	db, auth, clock := newTestServices(t)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{Auth: auth, DB: db})
	srv := httptest.NewServer(handler.Wrap(mux, nil, "http://localhost:3000"))
	t.Cleanup(srv.Close)

	return &testEnv{db: db, auth: auth, clock: clock, srv: srv}
}

// newClient returns an HTTP client with its own cookie jar.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := c.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func registerUser(t *testing.T, auth *service.AuthService, name, email, password string) int64 {
	t.Helper()
	id, err := auth.Register(context.Background(), service.RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register %s: %v", email, err)
	}
	return id
}
