// Package openrouter provides an OpenRouter API provider implementation
// for Halo.
package openrouter

import (
	"net/http"
	"time"

	"github.com/petal-labs/halo/core"
)

// DefaultBaseURL is the default base URL for the OpenRouter API.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultConnectTimeout bounds stream connection establishment. Once the
// response headers have arrived the stream itself is not time-limited;
// callers bound stalled streams through context cancellation.
const DefaultConnectTimeout = 60 * time.Second

// Config holds the configuration for the OpenRouter provider.
type Config struct {
	// APIKey is the API key for authentication.
	APIKey core.Secret

	// BaseURL is the base URL for the API. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is the HTTP client used for non-streaming requests.
	// Defaults to http.DefaultClient; the core client's total timeout
	// bounds these calls.
	HTTPClient *http.Client

	// StreamClient is the HTTP client used for streaming requests. When
	// nil, a client is built whose transport applies ConnectTimeout to
	// response-header arrival and leaves the open stream unbounded.
	StreamClient *http.Client

	// ConnectTimeout bounds connection establishment for streaming
	// requests. Defaults to DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// Headers are additional headers to include in requests.
	Headers http.Header

	// Referer is sent as HTTP-Referer, used by OpenRouter for app
	// attribution and rankings.
	Referer string

	// AppTitle is sent as X-Title, used by OpenRouter for app attribution.
	AppTitle string
}

// Option is a functional option for configuring the OpenRouter provider.
type Option func(*Config)

// WithBaseURL sets the base URL for the API.
// Useful for proxies or API-compatible endpoints.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for non-streaming requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithStreamClient sets the HTTP client used for streaming requests.
// The client should not carry an overall timeout, or long streams will be
// cut off mid-response.
func WithStreamClient(client *http.Client) Option {
	return func(c *Config) {
		c.StreamClient = client
	}
}

// WithConnectTimeout sets the stream connection-establishment timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ConnectTimeout = d
	}
}

// WithHeader adds an extra header to every request.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Add(key, value)
	}
}

// WithReferer sets the HTTP-Referer attribution header.
func WithReferer(url string) Option {
	return func(c *Config) {
		c.Referer = url
	}
}

// WithAppTitle sets the X-Title attribution header.
func WithAppTitle(title string) Option {
	return func(c *Config) {
		c.AppTitle = title
	}
}
