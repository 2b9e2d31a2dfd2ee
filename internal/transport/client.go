// Package transport provides the HTTP client used against the remote table
// service: bearer-token auth, retry with exponential backoff on transient
// failures, and a shared rate gate across all in-flight calls.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/weconnect/airbase/internal/ratelimit"
	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/logging"
)

const (
	// DefaultTimeout is the total per-request timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the retry ceiling for transient failures.
	DefaultRetries = 5
	// DefaultBackoffUnit is the base unit for exponential backoff:
	// delay = 2^attempt * unit.
	DefaultBackoffUnit = 510 * time.Millisecond
)

// Client performs authenticated HTTP requests with retry and rate limiting.
type Client struct {
	http        *http.Client
	auth        Authenticator
	gate        *ratelimit.Gate
	retries     int
	backoffUnit time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithGate sets the shared rate/concurrency gate.
func WithGate(gate *ratelimit.Gate) Option {
	return func(c *Client) { c.gate = gate }
}

// WithRetries sets the retry ceiling for transient failures.
func WithRetries(retries int) Option {
	return func(c *Client) { c.retries = retries }
}

// WithBackoffUnit sets the base unit for exponential backoff.
func WithBackoffUnit(unit time.Duration) Option {
	return func(c *Client) { c.backoffUnit = unit }
}

// New creates a transport client with the given authenticator.
func New(auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:        &http.Client{Timeout: DefaultTimeout},
		auth:        auth,
		gate:        ratelimit.Default(),
		retries:     DefaultRetries,
		backoffUnit: DefaultBackoffUnit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gate returns the client's rate gate so collaborators can share it.
func (c *Client) Gate() *ratelimit.Gate {
	return c.gate
}

// Do performs a request, retrying transient failures with exponential
// backoff up to the retry ceiling. Exceeding the ceiling yields a
// definitive ErrRetriesExhausted failure, never a hang. The response body
// is the caller's to close.
func (c *Client) Do(ctx context.Context, method, rawURL string, query url.Values, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.WrapValidation("body", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<uint(attempt-1)) * c.backoffUnit
			logging.FromContext(ctx).Debug().
				Str("method", method).
				Str("url", rawURL).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying request")
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}

		resp, err := c.attempt(ctx, method, rawURL, query, payload)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Connection-level failure: transient, retry.
			lastErr = err
			continue
		}
		if retryableStatus(resp.StatusCode) {
			lastErr = errors.NewAPIError("", resp.StatusCode, http.StatusText(resp.StatusCode))
			drain(resp)
			continue
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", errors.ErrRetriesExhausted, c.retries+1, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts", errors.ErrRetriesExhausted, c.retries+1)
}

// attempt issues one request while holding the rate gate.
func (c *Client) attempt(ctx context.Context, method, rawURL string, query url.Values, payload []byte) (*http.Response, error) {
	if err := c.gate.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.gate.Release()

	var bodyReader *bytes.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	c.auth.Apply(req)
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost || method == http.MethodPatch || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// retryableStatus reports whether a status code indicates a transient
// condition worth retrying.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return status >= 500
	}
}

