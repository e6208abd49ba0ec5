// Package backend is a client for the catalogue REST backend that owns images,
// tags and image-tag assignments.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/id"
	"github.com/memecataloger/memecataloger-web/internal/ratelimit"
)

const (
	defaultBaseURL = "http://backend:8000"
	defaultTimeout = 15 * time.Second
	defaultRPS     = 20.0
	defaultBurst   = 40

	// Error bodies are only logged; cap what we read.
	maxErrorBody = 4 << 10

	userAgent = "MemeCataloger-Web/1.0"
)

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	// UserID is sent as user-id on mutations; the backend checks ownership with it.
	UserID uuid.UUID
}

// Client is a rate-limited catalogue backend client.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	userID  uuid.UUID
	logger  *slog.Logger
}

// New creates a backend client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.New(cfg.RatePerSecond, cfg.Burst),
		userID:  cfg.UserID,
		logger:  logger,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Shutdown satisfies do.ShutdownerWithError.
func (c *Client) Shutdown() error {
	c.Close()
	return nil
}

// CanMutate reports whether a catalogue user is configured.
func (c *Client) CanMutate() bool {
	return c.userID != uuid.Nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve joins a backend path onto the base URL.
func (c *Client) resolve(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// do executes a rate-limited request and maps the status. On success the
// caller owns the response body.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx, c.baseURL.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID(ctx))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	c.logger.Warn("backend request failed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"body", string(snippet),
	)
	return nil, &statusErr{status: resp.StatusCode, err: statusError(resp.StatusCode)}
}

// statusErr carries the HTTP status out of do so wrapError can record it.
type statusErr struct {
	status int
	err    error
}

func (e *statusErr) Error() string { return e.err.Error() }
func (e *statusErr) Unwrap() error { return e.err }

// call runs a request and decodes a JSON body into out.
func (c *Client) call(ctx context.Context, op, method, path string, form url.Values, out any) error {
	resp, err := c.do(ctx, method, path, form)
	if err != nil {
		return wrapError(op, path, statusOf(err), err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrapError(op, path, resp.StatusCode, fmt.Errorf("parse response: %w", err))
	}
	return nil
}

// mutationForm starts a form carrying the configured user-id.
func (c *Client) mutationForm(op, path string) (url.Values, error) {
	if !c.CanMutate() {
		return nil, wrapError(op, path, 0, ErrNoUser)
	}
	form := url.Values{}
	form.Set("user-id", c.userID.String())
	return form, nil
}

func statusOf(err error) int {
	var se *statusErr
	if errors.As(err, &se) {
		return se.status
	}
	return 0
}

// requestID reuses the inbound chi request ID when there is one.
func requestID(ctx context.Context) string {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return reqID
	}
	if reqID, err := id.RequestID(); err == nil {
		return reqID
	}
	return "unknown"
}
