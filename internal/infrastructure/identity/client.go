package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/client-portal-api/internal/config"
	"github.com/client-portal-api/internal/domain"
)

// Session is a live platform session as this process sees it.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email"`
	Audience     string `json:"aud"`
}

// IsPortalUser reports whether the session belongs to this portal's user
// population. Sessions minted for other audiences are rejected upstream.
func (s *Session) IsPortalUser() bool {
	return s != nil && s.Audience == "portal"
}

// Client talks to the identity platform's REST API and holds the process's
// current session. The platform owns all session credential cryptography;
// this client only exchanges, installs and revokes.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpc      *http.Client

	mu      sync.Mutex
	current *Session
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.PlatformBaseURL,
		anonKey:    cfg.PlatformAnonKey,
		serviceKey: cfg.PlatformServiceKey,
		httpc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// ExchangeCode trades an authorization code from a redirect URL for a session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			Email string `json:"email"`
			Aud   string `json:"aud"`
		} `json:"user"`
	}
	err := c.post(ctx, "/token?grant_type=authorization_code", c.anonKey,
		map[string]string{"auth_code": code}, &out)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", domain.ErrExchangeFailed)
	}
	sess := &Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		Email:        out.User.Email,
		Audience:     out.User.Aud,
	}
	c.store(sess)
	return sess, nil
}

// SetSession installs raw tokens found in a redirect URL fragment. The access
// token is validated against the platform's user endpoint before it is kept.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	var user struct {
		Email string `json:"email"`
		Aud   string `json:"aud"`
	}
	if err := c.get(ctx, "/user", accessToken, &user); err != nil {
		return nil, fmt.Errorf("install session tokens: %w", domain.ErrExchangeFailed)
	}
	sess := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Email:        user.Email,
		Audience:     user.Aud,
	}
	c.store(sess)
	return sess, nil
}

// CurrentSession returns the installed session, or nil when signed out.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.current
	c.current = nil
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	// Revocation failure is not fatal: the local session is already gone.
	_ = c.post(ctx, "/logout", sess.AccessToken, nil, nil)
	return nil
}

// GenerateSignInToken asks the platform for a single-use magic-link-style
// token scoped to email. The OTP only proved mailbox possession; this token
// is the actual session credential precursor, minted by the platform.
func (c *Client) GenerateSignInToken(ctx context.Context, email string) (string, error) {
	var out struct {
		HashedToken string `json:"hashed_token"`
		ActionLink  string `json:"action_link"`
	}
	err := c.post(ctx, "/admin/generate_link", c.serviceKey,
		map[string]string{"type": "magiclink", "email": email}, &out)
	if err != nil {
		return "", fmt.Errorf("generate sign-in token: %w", domain.ErrExchangeFailed)
	}
	return out.HashedToken, nil
}

func (c *Client) store(sess *Session) {
	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()
}

func (c *Client) post(ctx context.Context, path, bearer string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, bearer, out)
}

func (c *Client) get(ctx context.Context, path, bearer string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, bearer, out)
}

func (c *Client) do(req *http.Request, bearer string, out interface{}) error {
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("platform returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
