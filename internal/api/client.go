// Package api is the HTTP client for the remote checklist service. It
// handles Bearer token authentication, JSON marshaling, typed response
// parsing, and bounded retry with exponential backoff on transient
// failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/checklist-sync/internal/retry"
)

// ErrNotFound indicates the requested checklist or item does not exist.
// Callers treat this as a normal outcome, never as a hard failure.
var ErrNotFound = errors.New("api: resource not found")

// ErrConflict indicates a create collided with an existing resource.
var ErrConflict = errors.New("api: resource already exists")

// Error is a non-2xx response that is neither not-found nor conflict.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// TokenProvider supplies the bearer credential for API requests. The
// token is negotiated by an external auth collaborator.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed string, used by
// tests and one-shot CLI invocations.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client is the checklist service HTTP client.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	attempts   int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetryAttempts bounds the transport retry loop.
func WithRetryAttempts(n int) Option {
	return func(c *Client) { c.attempts = n }
}

// WithBaseDelay sets the initial backoff delay between attempts.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithLogger attaches a structured logger for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a checklist service client rooted at baseURL.
func NewClient(baseURL string, tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		attempts:  3,
		baseDelay: time.Second,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post performs an HTTP POST request with a JSON body.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// put performs an HTTP PUT request with a JSON body.
func (c *Client) put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// delete performs an HTTP DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do is the core HTTP method. Network failures, 429 (honoring
// Retry-After), and 5xx responses are retried with exponential backoff;
// everything else resolves on the first attempt.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	return retry.Do(ctx,
		retry.Config{Attempts: c.attempts, BaseDelay: c.baseDelay, MaxDelay: 30 * time.Second},
		func(ctx context.Context) error {
			return c.attempt(ctx, method, url, path, payload, result)
		},
		func(attempt int, err error) {
			c.logger.Warn("api request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		},
	)
}

// attempt executes a single request/response cycle. Transient failures
// come back as plain errors; terminal outcomes are wrapped with
// retry.Stop so the surrounding loop exits immediately.
func (c *Client) attempt(
	ctx context.Context,
	method, url, path string,
	payload []byte,
	result interface{},
) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return retry.Stop(fmt.Errorf("creating request: %w", err))
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return retry.Stop(fmt.Errorf("resolving API token: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		// Retry-After replaces the loop's backoff delay for the next
		// attempt.
		err := fmt.Errorf("rate limited (429) on %s %s", method, path)
		if wait := retryAfterDuration(resp); wait > 0 {
			return retry.After(err, wait)
		}
		return err

	case resp.StatusCode >= 500:
		return fmt.Errorf("server error (%d) on %s %s", resp.StatusCode, method, path)

	case resp.StatusCode == http.StatusUnauthorized:
		return retry.Stop(&Error{
			Status:  resp.StatusCode,
			Message: "authentication failed: check the stored API token",
		})

	case resp.StatusCode == http.StatusNotFound:
		return retry.Stop(ErrNotFound)

	case resp.StatusCode == http.StatusConflict:
		return retry.Stop(ErrConflict)

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var errResp errorResponse
		msg := string(respBody)
		if json.Unmarshal(respBody, &errResp) == nil && errResp.message() != "" {
			msg = errResp.message()
		}
		if isNotFoundMessage(msg) {
			return retry.Stop(ErrNotFound)
		}
		if isConflictMessage(msg) {
			return retry.Stop(ErrConflict)
		}
		return retry.Stop(&Error{Status: resp.StatusCode, Message: msg})
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return retry.Stop(fmt.Errorf(
			"unmarshaling response from %s %s: %w", method, path, err,
		))
	}

	return nil
}

// retryAfterDuration reads the Retry-After header, capped at 30s.
func retryAfterDuration(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	wait := time.Duration(seconds) * time.Second
	if wait > 30*time.Second {
		wait = 30 * time.Second
	}
	return wait
}
