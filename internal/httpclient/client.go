// Package httpclient issues JSON REST calls against the social API.
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
	"strings"
	"time"

	"go.uber.org/zap"

	"socialnet/internal/entities"
)

// DefaultPrefix is the versioned API prefix.
const DefaultPrefix = "/api/v1"

// TokenSource returns the bearer token to attach, or "" for anonymous calls.
type TokenSource func() string

// Client wraps an *http.Client with base URL, prefix and auth handling.
type Client struct {
	baseURL *url.URL
	prefix  string
	http    *http.Client
	token   TokenSource
	log     *zap.SugaredLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithPrefix overrides the versioned API prefix.
func WithPrefix(prefix string) Option {
	return func(c *Client) { c.prefix = "/" + strings.Trim(prefix, "/") }
}

// WithTokenSource sets the bearer token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: %w", baseURL, entities.ErrInvalidArgument)
	}

	c := &Client{
		baseURL: u,
		prefix:  DefaultPrefix,
		http:    &http.Client{Timeout: 10 * time.Second},
		token:   func() string { return "" },
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL resolves an API path (relative to the prefix) with optional query.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + c.prefix + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends a JSON request and decodes a 2xx JSON answer into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), payload)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.send(req, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// PutBinary uploads r to an absolute, presigned URL. No auth header is sent.
func (c *Client) PutBinary(ctx context.Context, rawURL, contentType string, r io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rawURL, r)
	if err != nil {
		return fmt.Errorf("build upload: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.send(req, req.URL.Path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode upload answer: %w", err)
	}
	return nil
}

func (c *Client) send(req *http.Request, path string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugw("http", "method", req.Method, "path", path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	c.log.Debugw("http",
		"method", req.Method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(req.Method, path, resp)
}

func decodeError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}

	var body entities.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsCanceled reports whether err comes from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Token returns the bearer token currently attached to requests.
func (c *Client) Token() string { return c.token() }

// WebsocketURL resolves an API path with the ws or wss scheme.
func (c *Client) WebsocketURL(path string, query url.Values) string {
	u, _ := url.Parse(c.URL(path, query))
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	return u.String()
}
