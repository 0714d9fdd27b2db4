// Package authclient talks to the remote auth API: CSRF cookie handshake, login and registration.
package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/jonathan/cv-builder/internal/types"
)

// Auth API paths.
const (
	CSRFCookiePath = "/sanctum/csrf-cookie"
	LoginPath      = "/login"
	RegisterPath   = "/register"
)

// XSRF cookie and header names.
const (
	xsrfCookie = "XSRF-TOKEN"
	xsrfHeader = "X-XSRF-TOKEN"
)

// MsgRegistered is shown after a successful registration.
const MsgRegistered = "Registro exitoso. Ahora puedes iniciar sesión."

// DefaultTimeout bounds each request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client is an auth API client. It keeps cookies across calls and is safe for concurrent use.
type Client struct {
	http    *resty.Client
	jar     http.CookieJar
	base    *url.URL
	session *Session
	logger  *zap.Logger

	mu        sync.RWMutex
	user      *types.User
	token     string
	expiresAt time.Time
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid auth API base URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	hc := resty.NewWithClient(&http.Client{Jar: jar, Timeout: timeout}).
		SetBaseURL(base.String()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetRetryCount(0)

	c := &Client{
		http:   hc,
		jar:    jar,
		base:   base,
		logger: logger,
	}
	c.session = NewSession(c.fetchCSRFCookie)
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// Session exposes the CSRF session state.
func (c *Client) Session() *Session {
	return c.session
}

// Login signs in and remembers the returned user and token.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out types.LoginResponse
	if err := c.post(ctx, LoginPath, req, &out); err != nil {
		return nil, err
	}
	c.remember(&out)
	return &out, nil
}

// Register creates an account. The API does not sign the user in.
func (c *Client) Register(ctx context.Context, req types.RegisterRequest) (*types.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out types.LoginResponse
	if err := c.post(ctx, RegisterPath, req, &out); err != nil {
		return nil, err
	}
	if out.Message == "" {
		out.Message = MsgRegistered
	}
	return &out, nil
}

// User returns the signed-in user, or nil.
func (c *Client) User() *types.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Token returns the access token from the last login, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ExpiresAt returns when the access token expires. Zero when unknown.
func (c *Client) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

// Authenticated reports whether a login succeeded and its token, if it has an expiry, is still valid at now.
func (c *Client) Authenticated(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil && c.token == "" {
		return false
	}
	return c.expiresAt.IsZero() || now.Before(c.expiresAt)
}

func (c *Client) remember(resp *types.LoginResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = resp.User
	c.token = resp.Token
	c.expiresAt = time.Time{}
	if exp, ok := TokenExpiry(resp.Token); ok {
		c.expiresAt = exp
	}
}

func (c *Client) fetchCSRFCookie(ctx context.Context) error {
	c.logger.Debug("fetching CSRF cookie", zap.String("url", c.base.String()+CSRFCookiePath))
	resp, err := c.http.R().SetContext(ctx).Get(CSRFCookiePath)
	if err != nil {
		return connectionError(err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return errorFromResponse(resp.StatusCode(), resp.Bytes())
	}
	return nil
}

// xsrfToken reads the URL-encoded XSRF-TOKEN cookie from the jar.
func (c *Client) xsrfToken() string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name != xsrfCookie {
			continue
		}
		if v, err := url.PathUnescape(ck.Value); err == nil {
			return v
		}
		return ck.Value
	}
	return ""
}

// ensureToken makes the session ready and returns the XSRF token, refetching once if the cookie is missing.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if err := c.session.EnsureReady(ctx); err != nil {
		return "", err
	}
	if token := c.xsrfToken(); token != "" {
		return token, nil
	}

	c.logger.Debug("XSRF cookie missing, refreshing session")
	c.session.Reset()
	if err := c.session.EnsureReady(ctx); err != nil {
		return "", err
	}
	return c.xsrfToken(), nil
}

func (c *Client) send(ctx context.Context, path string, body any) (*resty.Response, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	req := c.http.R().SetContext(ctx).SetBody(body)
	if token != "" {
		req.SetHeader(xsrfHeader, token)
	}
	if bearer := c.Token(); bearer != "" {
		req.SetHeader("Authorization", "Bearer "+bearer)
	}

	resp, err := req.Post(path)
	if err != nil {
		return nil, connectionError(err)
	}
	return resp, nil
}

// post sends body to path. A 419 resets the session and the request is retried exactly once.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.send(ctx, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode() == StatusCSRFExpired {
		c.logger.Info("CSRF token expired, retrying once", zap.String("path", path))
		c.session.Reset()
		resp, err = c.send(ctx, path, body)
		if err != nil {
			return err
		}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		apiErr := errorFromResponse(resp.StatusCode(), resp.Bytes())
		c.logger.Warn("auth API request failed",
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("type", string(apiErr.Type)))
		return apiErr
	}

	if out == nil || len(resp.Bytes()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Bytes(), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
