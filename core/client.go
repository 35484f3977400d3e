package core

import (
	"context"
	"encoding/json"
	"time"
)

// Provider is the interface that chat-completion providers must implement.
// Providers SHOULD be safe for concurrent calls.
// If a provider cannot be concurrent-safe, it MUST document this.
type Provider interface {
	// ID returns the provider identifier (e.g., "openrouter").
	ID() string

	// Models returns the list of models available from this provider.
	Models() []ModelInfo

	// Supports reports whether the provider supports the given feature.
	Supports(feature Feature) bool

	// Chat sends a non-streaming chat request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// StreamChat sends a streaming chat request.
	StreamChat(ctx context.Context, req *ChatRequest) (*ChatStream, error)
}

// DefaultTimeout bounds a non-streaming call end to end, including all
// retry attempts and the delays between them.
const DefaultTimeout = 60 * time.Second

// Client is the main entry point for interacting with chat providers.
// Client is safe for concurrent use.
type Client struct {
	provider  Provider
	telemetry TelemetryHook
	retry     RetryPolicy
	timeout   time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given provider and options.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:  p,
		telemetry: NoopTelemetryHook{},
		retry:     DefaultRetryPolicy(),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// WithRetryPolicy sets the retry policy for the client.
func WithRetryPolicy(r RetryPolicy) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.retry = r
		}
	}
}

// WithTimeout sets the total timeout for non-streaming calls, covering all
// retry attempts combined. Zero or negative disables the client timeout.
// Streaming calls are not bounded by this timeout; only their connection
// establishment is limited, by the provider's transport configuration.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Chat returns a ChatBuilder for constructing and executing a chat request.
func (c *Client) Chat(model ModelID) *ChatBuilder {
	return &ChatBuilder{
		client: c,
		req: ChatRequest{
			Model: model,
		},
	}
}

// ChatBuilder provides a fluent API for building chat requests.
// ChatBuilder is NOT thread-safe and should not be shared across goroutines.
type ChatBuilder struct {
	client *Client
	req    ChatRequest
}

// Clone returns an independent copy of the builder. The copies share no
// mutable state, so a base builder can be branched per goroutine.
func (b *ChatBuilder) Clone() *ChatBuilder {
	clone := &ChatBuilder{
		client: b.client,
		req:    b.req,
	}
	clone.req.Messages = append([]Message(nil), b.req.Messages...)
	clone.req.Stop = append([]string(nil), b.req.Stop...)
	clone.req.Tools = append([]Tool(nil), b.req.Tools...)
	return clone
}

// System appends a system message.
func (b *ChatBuilder) System(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleSystem, Content: s})
	return b
}

// User appends a user message.
func (b *ChatBuilder) User(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: s})
	return b
}

// Assistant appends an assistant message.
func (b *ChatBuilder) Assistant(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleAssistant, Content: s})
	return b
}

// ToolResult appends a tool result message answering the tool call with the
// given ID. content is marshaled to JSON unless it is already a string.
func (b *ChatBuilder) ToolResult(callID string, content any) *ChatBuilder {
	var text string
	switch v := content.(type) {
	case string:
		text = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			text = ""
		} else {
			text = string(data)
		}
	}
	b.req.Messages = append(b.req.Messages, Message{
		Role:       RoleTool,
		Content:    text,
		ToolCallID: callID,
	})
	return b
}

// Messages appends a full message history, preserving roles, tool calls and
// tool call IDs. Use this to replay a conversation.
func (b *ChatBuilder) Messages(msgs []Message) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, msgs...)
	return b
}

// Temperature sets the sampling temperature.
func (b *ChatBuilder) Temperature(v float32) *ChatBuilder {
	b.req.Temperature = &v
	return b
}

// MaxTokens sets the maximum completion tokens.
func (b *ChatBuilder) MaxTokens(n int) *ChatBuilder {
	b.req.MaxTokens = &n
	return b
}

// TopP sets the nucleus sampling parameter.
func (b *ChatBuilder) TopP(v float32) *ChatBuilder {
	b.req.TopP = &v
	return b
}

// TopK sets the top-k sampling parameter.
func (b *ChatBuilder) TopK(n int) *ChatBuilder {
	b.req.TopK = &n
	return b
}

// FrequencyPenalty sets the frequency penalty.
func (b *ChatBuilder) FrequencyPenalty(v float32) *ChatBuilder {
	b.req.FrequencyPenalty = &v
	return b
}

// PresencePenalty sets the presence penalty.
func (b *ChatBuilder) PresencePenalty(v float32) *ChatBuilder {
	b.req.PresencePenalty = &v
	return b
}

// RepetitionPenalty sets the repetition penalty.
func (b *ChatBuilder) RepetitionPenalty(v float32) *ChatBuilder {
	b.req.RepetitionPenalty = &v
	return b
}

// Stop sets the stop sequences.
func (b *ChatBuilder) Stop(sequences ...string) *ChatBuilder {
	b.req.Stop = sequences
	return b
}

// Seed sets the sampling seed for providers that support deterministic output.
func (b *ChatBuilder) Seed(n int) *ChatBuilder {
	b.req.Seed = &n
	return b
}

// Tools sets the tools available for the request.
func (b *ChatBuilder) Tools(ts ...Tool) *ChatBuilder {
	b.req.Tools = ts
	return b
}

// ToolChoice sets the tool choice mode ("auto", "none", "required").
func (b *ChatBuilder) ToolChoice(mode string) *ChatBuilder {
	b.req.ToolChoice = mode
	return b
}

// ResponseFormat sets the requested response format.
func (b *ChatBuilder) ResponseFormat(f ResponseFormat) *ChatBuilder {
	b.req.ResponseFormat = &f
	return b
}

// Preset applies a generation-parameter preset. Fields already set on the
// builder are not overwritten, so per-call settings win over preset values.
func (b *ChatBuilder) Preset(p Preset) *ChatBuilder {
	if b.req.Temperature == nil {
		b.req.Temperature = p.Temperature
	}
	if b.req.TopP == nil {
		b.req.TopP = p.TopP
	}
	if b.req.TopK == nil {
		b.req.TopK = p.TopK
	}
	if b.req.FrequencyPenalty == nil {
		b.req.FrequencyPenalty = p.FrequencyPenalty
	}
	if b.req.PresencePenalty == nil {
		b.req.PresencePenalty = p.PresencePenalty
	}
	if b.req.RepetitionPenalty == nil {
		b.req.RepetitionPenalty = p.RepetitionPenalty
	}
	return b
}

// validate checks that the request is valid. Validation failures are
// surfaced before any network call is attempted.
func (b *ChatBuilder) validate() error {
	if b.req.Model == "" {
		return ErrModelRequired
	}
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}

	for _, msg := range b.req.Messages {
		if msg.Role == RoleTool && msg.ToolCallID == "" {
			return ErrToolCallIDRequired
		}
		// Assistant messages carrying tool calls may have empty content
		if msg.Content == "" && len(msg.ToolCalls) == 0 {
			return ErrNoMessages
		}
	}

	return nil
}

// GetResponse executes the chat request and returns the response.
// It applies validation, telemetry, the client's total timeout, and retry
// logic. The timeout covers all attempts combined, not each attempt.
func (b *ChatBuilder) GetResponse(ctx context.Context) (*ChatResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	if b.client.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.client.timeout)
		defer cancel()
	}

	start := time.Now()
	providerID := b.client.provider.ID()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Provider: providerID,
		Model:    b.req.Model,
		Start:    start,
	})

	resp, err := b.client.dispatch(ctx, &b.req, func(ctx context.Context) (*ChatResponse, error) {
		return b.client.provider.Chat(ctx, &b.req)
	})

	end := time.Now()
	usage := TokenUsage{}
	if resp != nil {
		usage = resp.Usage
	}
	b.client.telemetry.OnRequestEnd(RequestEndEvent{
		Provider: providerID,
		Model:    b.req.Model,
		Start:    start,
		End:      end,
		Usage:    usage,
		Err:      err,
	})

	return resp, err
}

// dispatch runs fn under the client's retry policy. Attempts are counted
// from 1; the policy decides, per failure, whether another attempt follows
// and after what delay.
func (c *Client) dispatch(ctx context.Context, req *ChatRequest, fn func(context.Context) (*ChatResponse, error)) (*ChatResponse, error) {
	var resp *ChatResponse
	var err error

	for attempt := 1; ; attempt++ {
		resp, err = fn(ctx)
		if err == nil {
			return resp, nil
		}

		delay, retry := c.retry.NextDelay(attempt, err)
		if !retry {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Stream executes the chat request and returns a streaming response.
//
// The retry policy wraps only the connection/setup phase: a failure before
// the ChatStream is handed back (connection error, non-success status) is
// retried like a non-streaming call, but once the stream is open the call
// commits and is never silently retried, since the caller may already have
// observed partial output.
func (b *ChatBuilder) Stream(ctx context.Context) (*ChatStream, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	providerID := b.client.provider.ID()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Provider: providerID,
		Model:    b.req.Model,
		Start:    start,
	})

	var stream *ChatStream
	var err error

	for attempt := 1; ; attempt++ {
		stream, err = b.client.provider.StreamChat(ctx, &b.req)
		if err == nil {
			break
		}

		delay, retry := b.client.retry.NextDelay(attempt, err)
		if !retry {
			break
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(delay):
			continue
		}
		break
	}

	if err != nil {
		b.client.telemetry.OnRequestEnd(RequestEndEvent{
			Provider: providerID,
			Model:    b.req.Model,
			Start:    start,
			End:      time.Now(),
			Err:      err,
		})
		return nil, err
	}

	return stream, nil
}

// StreamEach executes the chat request as a stream and invokes fn for each
// content delta, in arrival order, on the calling goroutine. fn's execution
// time directly delays consumption of the underlying byte stream.
//
// Returning false from fn stops the stream: the underlying transport read is
// terminated and StreamEach returns the response assembled from the deltas
// delivered so far, as success. A mid-stream failure likewise returns the
// partial response, together with the error.
func (b *ChatBuilder) StreamEach(ctx context.Context, fn func(ChatChunk) bool) (*ChatResponse, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := b.Stream(ctx)
	if err != nil {
		return nil, err
	}

	var accumulated []byte
	var streamErr error
	var finalResp *ChatResponse
	stopped := false

	for {
		select {
		case chunk, ok := <-stream.Ch:
			if !ok {
				goto drained
			}
			accumulated = append(accumulated, chunk.Delta...)
			if !stopped && !fn(chunk) {
				stopped = true
				cancel()
			}

		case err, ok := <-stream.Err:
			if ok && err != nil {
				streamErr = err
			}

		case resp, ok := <-stream.Final:
			if ok {
				finalResp = resp
			}
		}
	}

drained:
	select {
	case err, ok := <-stream.Err:
		if ok && err != nil {
			streamErr = err
		}
	default:
	}
	if finalResp == nil {
		if resp, ok := <-stream.Final; ok {
			finalResp = resp
		}
	}

	if finalResp == nil {
		finalResp = &ChatResponse{}
	}
	if finalResp.Output == "" {
		finalResp.Output = string(accumulated)
	}

	// A caller-requested stop is success up to that point, not an error.
	if stopped {
		return finalResp, nil
	}
	if streamErr != nil {
		return finalResp, streamErr
	}
	return finalResp, nil
}
