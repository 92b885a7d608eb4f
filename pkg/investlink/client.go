// Package investlink is a client for the InvestLink brokerage REST and
// streaming API. It handles TOTP session login, token refresh on expiry, and
// the endpoints the bot needs: candle history, portfolio, order placement and
// cancellation, and trading status.
package investlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
)

// Config configures a Client.
type Config struct {
	Token      string // static API token; empty means session login
	ClientCode string // account login for session auth
	Password   string
	TOTPSecret string // base32 secret; a fresh code is generated per login

	RootURL   string // default: https://api.investlink.io
	StreamURL string // default: wss://stream.investlink.io/ws
	AccountID string
	Timeout   time.Duration // default: 10s
}

// Client is a thread-safe InvestLink API client.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string

	// SessionExpiryHook is called after a 401 forces a re-login. Optional.
	SessionExpiryHook func()
}

const (
	defaultRoot   = "https://api.investlink.io"
	defaultStream = "wss://stream.investlink.io/ws"
)

var routes = map[string]string{
	"auth.login":   "/v1/auth/session",
	"auth.logout":  "/v1/auth/session/close",
	"candles":      "/v1/market/candles",
	"status":       "/v1/market/status",
	"portfolio":    "/v1/accounts/%s/portfolio",
	"orders.place": "/v1/accounts/%s/orders",
	"orders.list":  "/v1/accounts/%s/orders/active",
	"orders.drop":  "/v1/accounts/%s/orders/%s",
}

// New builds a client. With a static token no session login happens; with
// credentials the first authenticated call logs in lazily.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" && (cfg.ClientCode == "" || cfg.Password == "" || cfg.TOTPSecret == "") {
		return nil, fmt.Errorf("investlink: need either a token or client code + password + totp secret")
	}
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRoot
	}
	if cfg.StreamURL == "" {
		cfg.StreamURL = defaultStream
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.RootURL = strings.TrimRight(cfg.RootURL, "/")

	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		accessToken: cfg.Token,
	}, nil
}

// AccountID returns the configured account.
func (c *Client) AccountID() string { return c.cfg.AccountID }

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *Client) setToken(t string) {
	c.mu.Lock()
	c.accessToken = t
	c.mu.Unlock()
}

// Login opens a session using the account credentials and a freshly
// generated TOTP code. No-op when a static token is configured.
func (c *Client) Login(ctx context.Context) error {
	if c.cfg.Token != "" {
		return nil
	}
	code, err := totp.GenerateCode(c.cfg.TOTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("investlink: totp: %w", err)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	err = c.call(ctx, http.MethodPost, routes["auth.login"], map[string]any{
		"client_code": c.cfg.ClientCode,
		"password":    c.cfg.Password,
		"totp":        code,
	}, nil, &out)
	if err != nil {
		return fmt.Errorf("investlink: login: %w", err)
	}
	if out.AccessToken == "" {
		return fmt.Errorf("investlink: login: empty access token")
	}
	c.setToken(out.AccessToken)
	return nil
}

// Logout closes the current session.
func (c *Client) Logout(ctx context.Context) error {
	if c.cfg.Token != "" || c.token() == "" {
		return nil
	}
	return c.call(ctx, http.MethodPost, routes["auth.logout"], nil, nil, nil)
}

// apiError is the broker's error envelope.
type apiError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("investlink: %s (%s, http %d)", e.Message, e.Code, e.Status)
}

// call performs one request. On a 401 with session credentials it re-logs-in
// once and retries.
func (c *Client) call(ctx context.Context, method, path string, body map[string]any, query url.Values, out any) error {
	status, err := c.do(ctx, method, path, body, query, out)
	if status == http.StatusUnauthorized && c.cfg.Token == "" && path != routes["auth.login"] {
		if lerr := c.Login(ctx); lerr != nil {
			return lerr
		}
		if c.SessionExpiryHook != nil {
			c.SessionExpiryHook()
		}
		_, err = c.do(ctx, method, path, body, query, out)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body map[string]any, query url.Values, out any) (int, error) {
	reqURL := c.cfg.RootURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{Status: resp.StatusCode, Code: "unknown", Message: http.StatusText(resp.StatusCode)}
		json.Unmarshal(raw, apiErr)
		return resp.StatusCode, apiErr
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("investlink: decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}
