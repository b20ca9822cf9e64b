// Package api is the single egress point for all server calls. It attaches
// the session credential, enforces the request timeout, normalizes errors,
// and raises the forced-logout signal when the server rejects the token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/existflow/pmdesk/internal/logger"
)

// DefaultTimeout bounds every request. A request that exceeds it surfaces
// as a NetworkError, not an application error.
const DefaultTimeout = 10 * time.Second

// Client is the API gateway
type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	token     string
	listeners []func()
}

// New creates a client for the given server base URL (e.g.
// "http://localhost:8000/api")
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// SetToken installs the credential attached to subsequent requests.
// Only the session store calls this.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the credential; subsequent requests go out
// unauthenticated
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently attached credential, empty when logged out
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// OnSessionExpired registers a forced-logout listener. The gateway may not
// hold a reference back to the session store, so the store registers a
// callback here instead.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Client) notifyExpired() {
	c.mu.Lock()
	fns := make([]func(), len(c.listeners))
	copy(fns, c.listeners)
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// get issues a GET and decodes the JSON response into out
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

// do issues one request. body (when non-nil) is marshaled as JSON; out
// (when non-nil) receives the decoded response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hadToken := c.attachToken(req)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("request failed", logger.F("method", method), logger.F("path", path), logger.F("error", err))
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, hadToken, out)
}

// attachToken adds the bearer header when a token is set and reports
// whether it did
func (c *Client) attachToken(req *http.Request) bool {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token == "" {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return true
}

// handleResponse classifies the response into the error taxonomy. A 401
// fires the forced-logout listeners exactly once for this response, then the
// error is still returned: callers must handle the rejected operation
// themselves.
func (c *Client) handleResponse(resp *http.Response, hadToken bool, out any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	detail := decodeDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if hadToken {
			logger.Info("credential rejected, signaling forced logout")
			c.notifyExpired()
			return &SessionExpiredError{Detail: detail}
		}
		return &AuthError{Detail: detail}
	case http.StatusForbidden:
		return &ForbiddenError{Detail: detail}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Detail: detail}
	default:
		return &StatusError{Code: resp.StatusCode, Detail: detail}
	}
}

// decodeDetail pulls the optional human-readable detail field out of an
// error body
func decodeDetail(r io.Reader) string {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	if body.Detail != "" {
		return body.Detail
	}
	return body.Error
}

// upload sends a multipart file field and decodes the response like do
func (c *Client) upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	hadToken := c.attachToken(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, hadToken, out)
}
