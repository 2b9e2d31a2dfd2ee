// Package airtable is a client for the Airtable REST API: bases, tables,
// and records, with transparent pagination, batched mutations, retry, and
// rate limiting. Table implements the reconciler's Collection interface so
// tables can be synchronization targets directly.
package airtable

import (
	"context"
	"net/http"
	"os"

	"github.com/weconnect/airbase/internal/ratelimit"
	"github.com/weconnect/airbase/internal/transport"
	"github.com/weconnect/airbase/pkg/errors"
)

const (
	// DefaultBaseURL is the record API root.
	DefaultBaseURL = "https://api.airtable.com/v0"
	// DefaultMetaURL is the metadata API root.
	DefaultMetaURL = "https://api.airtable.com/v0/meta"

	// APIKeyEnvVar names the environment variable holding the API key.
	APIKeyEnvVar = "AIRTABLE_API_KEY"
)

// Client is the entry point to the API. It holds the authenticated
// transport shared by every base and table handle it creates.
type Client struct {
	transport *transport.Client
	baseURL   string
	metaURL   string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	apiKey        string
	baseURL       string
	metaURL       string
	httpClient    *http.Client
	gate          *ratelimit.Gate
	retries       int
	retriesSet    bool
	transportOpts []transport.Option
}

// WithAPIKey sets the API key. Without it the client falls back to the
// AIRTABLE_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL overrides the API root, primarily for tests.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithMetaURL overrides the metadata API root, primarily for tests.
func WithMetaURL(url string) Option {
	return func(o *options) { o.metaURL = url }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithGate sets the shared rate/concurrency gate.
func WithGate(gate *ratelimit.Gate) Option {
	return func(o *options) { o.gate = gate }
}

// WithRetries sets the transport retry ceiling.
func WithRetries(retries int) Option {
	return func(o *options) {
		o.retries = retries
		o.retriesSet = true
	}
}

// WithTransportOptions passes extra options through to the transport client.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) { o.transportOpts = append(o.transportOpts, opts...) }
}

// NewClient creates a Client. An API key is required, either via
// WithAPIKey or the AIRTABLE_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	o := &options{
		baseURL: DefaultBaseURL,
		metaURL: DefaultMetaURL,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.apiKey == "" {
		o.apiKey = os.Getenv(APIKeyEnvVar)
	}
	if o.apiKey == "" {
		return nil, errors.NewConfigError("airtable", "no API key provided and "+APIKeyEnvVar+" not set", errors.ErrAPIKeyRequired)
	}

	tOpts := make([]transport.Option, 0, 3+len(o.transportOpts))
	if o.httpClient != nil {
		tOpts = append(tOpts, transport.WithHTTPClient(o.httpClient))
	}
	if o.gate != nil {
		tOpts = append(tOpts, transport.WithGate(o.gate))
	}
	if o.retriesSet {
		tOpts = append(tOpts, transport.WithRetries(o.retries))
	}
	tOpts = append(tOpts, o.transportOpts...)

	return &Client{
		transport: transport.New(&transport.BearerAuth{Token: o.apiKey}, tOpts...),
		baseURL:   o.baseURL,
		metaURL:   o.metaURL,
	}, nil
}

// Base returns a handle for a base by ID without a metadata fetch.
func (c *Client) Base(baseID string) *Base {
	return &Base{client: c, ID: baseID}
}

// Bases fetches all bases visible to the API key.
func (c *Client) Bases(ctx context.Context) ([]*Base, error) {
	var result basesResponse
	resp, err := c.transport.Do(ctx, http.MethodGet, c.metaURL+"/bases", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := transport.DecodeResponse(resp, &result); err != nil {
		return nil, err
	}

	bases := make([]*Base, len(result.Bases))
	for i, b := range result.Bases {
		bases[i] = &Base{
			client:          c,
			ID:              b.ID,
			Name:            b.Name,
			PermissionLevel: b.PermissionLevel,
		}
	}
	return bases, nil
}

// BaseByName fetches the base with the given name or ID.
func (c *Client) BaseByName(ctx context.Context, nameOrID string) (*Base, error) {
	bases, err := c.Bases(ctx)
	if err != nil {
		return nil, err
	}
	for _, base := range bases {
		if base.Name == nameOrID || base.ID == nameOrID {
			return base, nil
		}
	}
	return nil, errors.NewNotFoundError("base", nameOrID)
}

// Table is a convenience shortcut for Base(baseID).Table(tableName).
func (c *Client) Table(baseID, tableName string) *Table {
	return c.Base(baseID).Table(tableName)
}
