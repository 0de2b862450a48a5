// Package client is a Go client for the auth API. It keeps the session
// cookie in a jar, the way a browser would, and offers an observable auth
// store and a route guard on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/gameforge/gameforge/internal/domain"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsUnauthenticated reports whether err is a 401 from the server.
func IsUnauthenticated(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client talks to the auth API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the server at baseURL with its own cookie jar.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

type userBody struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *userBody) public() *domain.PublicUser {
	if u == nil {
		return nil
	}
	return &domain.PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: domain.Role(u.Role)}
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	MarketingOptIn bool   `json:"marketingOptIn"`
}

// Register creates an account and returns its id. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	var resp struct {
		UserID int64 `json:"userId"`
	}
	if err := c.do(ctx, http.MethodPost, "/register", req, &resp); err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

// Login opens a session; the cookie is stored in the client's jar.
func (c *Client) Login(ctx context.Context, identifier, password string, remember bool) (*domain.PublicUser, error) {
	req := struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
		Remember   bool   `json:"remember"`
	}{identifier, password, remember}

	var resp struct {
		User *userBody `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return nil, err
	}
	return resp.User.public(), nil
}

// Logout revokes the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// WhoAmI returns the logged-in user, or nil when there is none.
func (c *Client) WhoAmI(ctx context.Context) (*domain.PublicUser, error) {
	var user *userBody
	if err := c.do(ctx, http.MethodGet, "/auth", nil, &user); err != nil {
		return nil, err
	}
	return user.public(), nil
}

// Profile fetches the protected profile resource.
func (c *Client) Profile(ctx context.Context) (*domain.PublicUser, string, error) {
	var resp struct {
		User    *userBody `json:"user"`
		Message string    `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.User.public(), resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
