package openrouter

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"

	"github.com/petal-labs/halo/core"
)

// DefaultAPIKeyEnvVar is the environment variable name for the OpenRouter API key.
const DefaultAPIKeyEnvVar = "OPENROUTER_API_KEY"

// ErrAPIKeyNotFound is returned when the API key environment variable is not set.
var ErrAPIKeyNotFound = errors.New("openrouter: OPENROUTER_API_KEY environment variable not set")

// NewFromEnv creates a new OpenRouter provider using the OPENROUTER_API_KEY
// environment variable. This is a convenience factory for quick setup:
//
//	provider, err := openrouter.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := core.NewClient(provider)
func NewFromEnv(opts ...Option) (*OpenRouter, error) {
	apiKey := os.Getenv(DefaultAPIKeyEnvVar)
	if apiKey == "" {
		return nil, ErrAPIKeyNotFound
	}
	return New(apiKey, opts...), nil
}

// OpenRouter is a chat provider implementation for the OpenRouter API.
// OpenRouter is safe for concurrent use.
type OpenRouter struct {
	config       Config
	streamClient *http.Client
}

// New creates a new OpenRouter provider with the given API key and options.
func New(apiKey string, opts ...Option) *OpenRouter {
	cfg := Config{
		APIKey:         core.NewSecret(apiKey),
		BaseURL:        DefaultBaseURL,
		HTTPClient:     http.DefaultClient,
		ConnectTimeout: DefaultConnectTimeout,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	p := &OpenRouter{config: cfg}
	p.streamClient = cfg.StreamClient
	if p.streamClient == nil {
		// No overall timeout: the stream stays open as long as the model
		// produces output. Only dialing and header arrival are bounded.
		p.streamClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
				TLSHandshakeTimeout:   cfg.ConnectTimeout,
				ResponseHeaderTimeout: cfg.ConnectTimeout,
			},
			Timeout: 0,
		}
	}
	return p
}

// ID returns the provider identifier.
func (p *OpenRouter) ID() string {
	return "openrouter"
}

// Models returns the list of known models, aliases resolved.
func (p *OpenRouter) Models() []core.ModelInfo {
	// Return a copy to prevent mutation
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}

// Supports reports whether the provider supports the given feature.
func (p *OpenRouter) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling:
		return true
	default:
		return false
	}
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *OpenRouter) buildHeaders() http.Header {
	headers := make(http.Header)

	headers.Set("Authorization", "Bearer "+p.config.APIKey.Expose())
	headers.Set("Content-Type", "application/json")

	// Optional attribution headers
	if p.config.Referer != "" {
		headers.Set("HTTP-Referer", p.config.Referer)
	}
	if p.config.AppTitle != "" {
		headers.Set("X-Title", p.config.AppTitle)
	}

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

// Chat sends a non-streaming chat request.
func (p *OpenRouter) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return p.doChat(ctx, req)
}

// StreamChat sends a streaming chat request.
func (p *OpenRouter) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	return p.doStreamChat(ctx, req)
}

// Compile-time check that OpenRouter implements the provider interface.
var _ core.Provider = (*OpenRouter)(nil)
