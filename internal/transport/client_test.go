package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weconnect/airbase/internal/ratelimit"
	"github.com/weconnect/airbase/pkg/errors"
)

// testGate returns a gate wide enough to never throttle in tests.
func testGate() *ratelimit.Gate {
	return ratelimit.New(100, time.Second, 1000)
}

// testClient returns a client with fast backoff so retry tests run quickly.
func testClient(opts ...Option) *Client {
	base := []Option{
		WithGate(testGate()),
		WithBackoffUnit(time.Millisecond),
	}
	return New(&BearerAuth{Token: "key-test"}, append(base, opts...)...)
}

func TestDoSendsAuthAndHeaders(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := testClient()
	resp, err := c.Do(context.Background(), http.MethodPost, server.URL, nil, map[string]string{"a": "b"})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer key-test", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDoRetriesTransientStatus(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := testClient()
	resp, err := c.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 3, calls, "two 429s then success")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDoRetriesExhausted(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := testClient(WithRetries(2))
	_, err := c.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRetriesExhausted)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"type":"INVALID_REQUEST","message":"bad field"}}`))
	}))
	defer server.Close()

	c := testClient()
	resp, err := c.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err, "non-transient statuses are returned, not retried")
	resp.Body.Close()

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDoContextCanceledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := testClient(WithBackoffUnit(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Do(ctx, http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoQueryEncoding(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	query := url.Values{}
	query.Set("view", "Main View")
	query.Add("records[]", "rec00000000000001")
	query.Add("records[]", "rec00000000000002")

	c := testClient()
	resp, err := c.Do(context.Background(), http.MethodGet, server.URL, query, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Main View", gotQuery.Get("view"))
	assert.Equal(t, []string{"rec00000000000001", "rec00000000000002"}, gotQuery["records[]"])
}

func TestDecodeResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "rec00000000000001"})
	}))
	defer server.Close()

	c := testClient()
	resp, err := c.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, DecodeResponse(resp, &out))
	assert.Equal(t, "rec00000000000001", out.ID)
}

func TestDecodeResponseAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"NOT_FOUND","message":"record missing"}}`))
	}))
	defer server.Close()

	c := testClient()
	resp, err := c.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)

	var out map[string]any
	err = DecodeResponse(resp, &out)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err), "404 responses map to not-found errors")

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Type)
	assert.Equal(t, "record missing", apiErr.Message)
}
