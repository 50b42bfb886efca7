package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"

	"github.com/wastewise/wastewise-go/internal/client/notify"
	"github.com/wastewise/wastewise-go/internal/core/domain"
	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
	"github.com/wastewise/wastewise-go/internal/telemetry/metric"
)

// RefreshPath is the token-refresh endpoint, relative to the base URL.
const RefreshPath = "/auth/token/refresh/"

// DefaultTimeout bounds a single dispatch.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies and updates credentials. *tokenstore.Store implements it.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SetAccess(ctx context.Context, access string) error
}

// SessionExpiredFunc runs when a 401 cannot be recovered by refreshing.
type SessionExpiredFunc func(ctx context.Context, cause error)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	Tokens   TokenSource
	Notifier notify.Notifier
	Logger   logger.Logger
	Metrics  *metric.Registry

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client is the API client.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client

	tokens   TokenSource
	notifier notify.Notifier
	logger   logger.Logger
	metrics  *metric.Registry

	refreshGroup singleflight.Group

	hookMu    sync.RWMutex
	onExpired SessionExpiredFunc
}

// New creates a client for cfg.BaseURL. A base URL without a scheme gets http://.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "wastewise-go"
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: ua,
		timeout:   timeout,
		client:    &http.Client{Timeout: timeout, Transport: cfg.Transport},
		tokens:    cfg.Tokens,
		notifier:  notifier,
		logger:    l.With("component", "httpclient"),
		metrics:   cfg.Metrics,
	}
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnSessionExpired installs the hook run when a refresh is impossible.
func (c *Client) OnSessionExpired(fn SessionExpiredFunc) {
	c.hookMu.Lock()
	c.onExpired = fn
	c.hookMu.Unlock()
}

// Request describes one API call. Body is JSON-encoded on every dispatch,
// so a retried request sends the same payload.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// SkipAuth sends the request without a bearer header and without
	// 401 recovery. Used by the token endpoints.
	SkipAuth bool

	retried bool
}

// Retried reports whether the request has already been re-dispatched
// after a refresh.
func (r *Request) Retried() bool {
	return r.retried
}

// Do sends req and decodes a JSON response into out (which may be nil).
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%s %s: parse response: %w", req.Method, req.Path, err)
		c.surface(err)
		return err
	}
	return nil
}

// Download streams a successful response body into w and returns the
// byte count. Used for report and export files.
func (c *Client) Download(ctx context.Context, req *Request, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		err = fmt.Errorf("%s %s: download: %w", req.Method, req.Path, err)
		c.surface(err)
		return n, err
	}
	return n, nil
}

// Get, Post, Put, Patch and Delete are shorthands for Do.

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, nil)
}

// send dispatches req, runs 401 recovery, and returns a 2xx response or
// an error that has already been surfaced.
func (c *Client) send(ctx context.Context, req *Request) (*http.Response, error) {
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		c.surface(err)
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.retried && !req.SkipAuth {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		req.retried = true

		if _, err := c.refresh(ctx); err != nil {
			c.expire(ctx, err)
			c.surface(newAPIError(req.Method, req.Path, resp.StatusCode, body))
			return nil, domain.ErrSessionExpired.WithCause(err)
		}

		resp, err = c.dispatch(ctx, req)
		if err != nil {
			c.surface(err)
			return nil, err
		}
	}

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		err := newAPIError(req.Method, req.Path, resp.StatusCode, body)
		c.surface(err)
		return nil, err
	}
	return resp, nil
}

// dispatch performs exactly one HTTP round trip.
func (c *Client) dispatch(ctx context.Context, req *Request) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = ulid.Make().String()
	}
	c.addHeaders(httpReq, req, requestID)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	elapsed := time.Since(start)
	c.metrics.ObserveRequestDuration(req.Method, elapsed.Seconds())

	log := c.logger.With("request_id", requestID, "method", req.Method, "path", req.Path)
	if err != nil {
		c.metrics.RecordRequest(req.Method, "error")
		log.Debug("request failed", "error", err, "elapsed", elapsed)
		return nil, err
	}
	c.metrics.RecordRequest(req.Method, strconv.Itoa(resp.StatusCode))
	log.Debug("request completed", "status", resp.StatusCode, "elapsed", elapsed, "retried", req.retried)
	return resp, nil
}

// addHeaders adds authentication and common headers.
func (c *Client) addHeaders(httpReq *http.Request, req *Request, requestID string) {
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.SkipAuth || c.tokens == nil {
		return
	}
	if access := c.tokens.AccessToken(); access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refresh obtains a new access token. Concurrent callers share one call.
func (c *Client) refresh(ctx context.Context) (string, error) {
	v, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if shared {
		c.logger.Debug("joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	if c.tokens == nil || c.tokens.RefreshToken() == "" {
		c.metrics.RecordTokenRefresh("no_refresh_token")
		return "", domain.ErrNoRefreshToken
	}

	// One caller giving up must not fail the refresh for everyone sharing it.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req := &Request{
		Method:   http.MethodPost,
		Path:     RefreshPath,
		Body:     map[string]string{"refresh": c.tokens.RefreshToken()},
		SkipAuth: true,
	}
	resp, err := c.dispatch(rctx, req)
	if err != nil {
		c.metrics.RecordTokenRefresh("failed")
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		c.metrics.RecordTokenRefresh("failed")
		return "", newAPIError(req.Method, req.Path, resp.StatusCode, body)
	}

	var out refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Access == "" {
		c.metrics.RecordTokenRefresh("failed")
		return "", fmt.Errorf("refresh token: response without access token")
	}
	if err := c.tokens.SetAccess(rctx, out.Access); err != nil {
		// The new token is held in memory even if persisting it failed.
		c.logger.Warn("refreshed token not persisted", "error", err)
	}

	c.metrics.RecordTokenRefresh("ok")
	c.logger.Debug("access token refreshed")
	return out.Access, nil
}

func (c *Client) expire(ctx context.Context, cause error) {
	c.metrics.IncSessionExpired()
	c.logger.Info("session expired", "cause", cause)

	c.hookMu.RLock()
	fn := c.onExpired
	c.hookMu.RUnlock()
	if fn != nil {
		fn(ctx, cause)
	}
}

func (c *Client) surface(err error) {
	if silent(err) {
		return
	}
	c.notifier.Error(UserMessage(err))
}
