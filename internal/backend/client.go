// Package backend is the HTTP client for the practice-management API the
// gateway fronts. The API is cookie-authenticated; the gateway forwards the
// caller's access_token cookie and never interprets the token itself.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/legaltech/webgate/internal/model"
)

// SessionCookieName is the cookie the backend issues on login and expects
// back on every authenticated call.
const SessionCookieName = "access_token"

// ErrUnauthenticated marks a clean 401 from the backend: the session is
// missing, expired, or revoked. Callers redirect to sign-in on this error
// and on this error only; transport failures and unexpected statuses
// propagate as ordinary errors so an outage is never mistaken for a
// signed-out user.
var ErrUnauthenticated = errors.New("backend: unauthenticated")

type Client struct {
	baseURL string
	http    *http.Client
}

// LoginResult is the body of a successful POST /api/v1/auth/login.
type LoginResult struct {
	AccessToken   string      `json:"access_token"`
	ExpiresAt     json.Number `json:"expires_at"`
	ExpiresAtHTTP string      `json:"expires_at_http"`
	OrgType       *string     `json:"org_type"`
	Message       string      `json:"message"`
}

// CookieExpiry derives the access_token cookie expiry from the login
// response. expires_at_http (an HTTP-date) wins; the numeric expires_at is
// the unix-seconds fallback. A zero time means session cookie.
func (r *LoginResult) CookieExpiry() time.Time {
	if r.ExpiresAtHTTP != "" {
		if t, err := http.ParseTime(r.ExpiresAtHTTP); err == nil {
			return t
		}
	}
	if secs, err := r.ExpiresAt.Int64(); err == nil && secs > 0 {
		return time.Unix(secs, 0)
	}
	return time.Time{}
}

// apiError is the backend's structured error payload. The human-readable
// message lives in detail on newer revisions and message on older ones.
type apiError struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// LoginError carries the backend's message for a rejected login so the form
// can show it inline.
type LoginError struct {
	Status  int
	Message string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("backend: login rejected (%d): %s", e.Status, e.Message)
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchMe returns the current user for the given session token.
// 200 → (user, nil); 401 → (nil, ErrUnauthenticated); anything else is an
// error the caller must not translate into a sign-in redirect.
func (c *Client) FetchMe(ctx context.Context, token string) (*model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Cookie", SessionCookieName+"="+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch me: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read me body: %w", err)
		}
		user, err := model.ParseUser(body)
		if err != nil {
			return nil, err
		}
		return user, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	default:
		return nil, fmt.Errorf("backend returned %d for /api/v1/users/me", resp.StatusCode)
	}
}

// Login exchanges credentials for a session token. Rejections (4xx) come
// back as *LoginError with the backend's own message when it sends one.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("marshal login: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read login body: %w", err)
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		var result LoginResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decode login response: %w", err)
		}
		if result.AccessToken == "" {
			return nil, fmt.Errorf("login response missing access_token")
		}
		return &result, nil
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Detail
		if msg == "" {
			msg = apiErr.Message
		}
		if msg == "" {
			msg = "Login failed"
		}
		return nil, &LoginError{Status: resp.StatusCode, Message: msg}
	}
	return nil, fmt.Errorf("backend returned %d for /api/v1/auth/login", resp.StatusCode)
}

// Logout revokes the session server-side. The gateway clears its cookie
// regardless of the outcome; the error is for logging only.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Cookie", SessionCookieName+"="+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("backend returned %d for /api/v1/auth/logout", resp.StatusCode)
	}
	return nil
}
