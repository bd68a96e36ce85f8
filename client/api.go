// Package client is the Go client for the EcoTrack API: an HTTP client for
// the REST endpoints, a session store that tracks the authentication
// lifecycle, a token store for persisting credentials between runs, and a
// websocket subscriber for realtime notifications.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// User is the authenticated user as returned by the API.
type User struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Credentials is the result of a successful register or login call.
type Credentials struct {
	UserID    string `json:"user_id"`
	AuthToken string `json:"auth_token"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Type    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
}

// API is the surface of the HTTP client the session store depends on.
type API interface {
	Register(ctx context.Context, email, username, password string) (*Credentials, error)
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Verify(ctx context.Context, token string) (*User, error)
	Logout(ctx context.Context, token string) error
}

// Client talks to an EcoTrack server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Register creates an account and returns its credentials.
func (c *Client) Register(ctx context.Context, email, username, password string) (*Credentials, error) {
	var creds Credentials
	err := c.do(ctx, http.MethodPost, "/api/users/register", "", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}, &creds)
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

// Login authenticates and returns fresh credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	var creds Credentials
	err := c.do(ctx, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &creds)
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

// Verify resolves a token to its user. Fails with a 401 APIError when the
// token is stale.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	var body struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", token, nil, &body); err != nil {
		return nil, err
	}
	return &body.User, nil
}

// Logout revokes the token server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// do performs one JSON request. A non-2xx response decodes into an APIError;
// out may be nil when no body is expected.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Type = "http_error"
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
