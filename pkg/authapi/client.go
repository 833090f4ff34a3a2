package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnauthorized means the backend explicitly rejected the session (401).
// Every other failure is transient from the caller's point of view.
var ErrUnauthorized = errors.New("authapi: unauthorized")

// User is the identity shape the auth backend confirms.
type User struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Client is the surface the session service depends on. The auth backend
// owns all credential checking; this client only relays.
type Client interface {
	Login(ctx context.Context, username, password string) (*User, string, error)
	Logout(ctx context.Context, sessionCookie string) error
	Me(ctx context.Context, sessionCookie, bearerToken string) (*User, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login exchanges credentials for a session. The returned string is the raw
// Set-Cookie header to relay back to the caller's browser.
func (c *httpClient) Login(ctx context.Context, username, password string) (*User, string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/auth/login", bytes.NewBuffer(payload))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("login failed: status %d: %s", resp.StatusCode, string(body))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, "", fmt.Errorf("decode login response: %w", err)
	}

	return &user, resp.Header.Get("Set-Cookie"), nil
}

func (c *httpClient) Logout(ctx context.Context, sessionCookie string) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if sessionCookie != "" {
		req.Header.Set("Cookie", sessionCookie)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("logout failed: status %d", resp.StatusCode)
	}
	return nil
}

// Me asks the backend who the current session belongs to. Either the session
// cookie or a bearer token header can carry the identity.
func (c *httpClient) Me(ctx context.Context, sessionCookie, bearerToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if sessionCookie != "" {
		req.Header.Set("Cookie", sessionCookie)
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("me failed: status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read me response: %w", err)
	}

	// The backend answers 200 with a JSON null body for anonymous sessions.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrUnauthorized
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode me response: %w", err)
	}

	return &user, nil
}
