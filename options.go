package airbase

import (
	"github.com/weconnect/airbase/pkg/airtable"
)

// config holds construction options for an Airbase instance.
type config struct {
	client     *airtable.Client
	clientOpts []airtable.Option
}

// Option configures an Airbase instance.
type Option func(*config) error

// WithClient supplies a prebuilt API client, for callers that share one
// client and rate gate across systems.
func WithClient(client *airtable.Client) Option {
	return func(c *config) error {
		c.client = client
		return nil
	}
}

// WithAPIKey sets the API key used to build the client.
func WithAPIKey(key string) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, airtable.WithAPIKey(key))
		return nil
	}
}

// WithClientOptions passes options through to the client constructor.
func WithClientOptions(opts ...airtable.Option) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, opts...)
		return nil
	}
}
