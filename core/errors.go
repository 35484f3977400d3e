package core

import (
	"errors"
	"fmt"
)

// CodeNetworkError is the error code carried by ProviderError when a call
// fails at the transport level (connection refused, timeout, TLS failure).
// Transport failures surface with Status 0.
const CodeNetworkError = "NETWORK_ERROR"

// ProviderError represents an error returned by a provider with full context.
// Status is the HTTP status of the failing response, or 0 for transport-level
// failures. Code carries the server-provided error code when available.
type ProviderError struct {
	Provider  string
	Status    int
	RequestID string
	Code      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status=%d, code=%s, request_id=%s)",
			e.Provider, e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (status=%d, code=%s)",
		e.Provider, e.Message, e.Status, e.Code)
}

// Unwrap returns the underlying error for error chaining.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Sentinel errors for classification.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")
	ErrNotSupported = errors.New("operation not supported")
)

// Validation errors with actionable guidance. These are raised before any
// network call is attempted.
var (
	ErrModelRequired      = errors.New("model required: pass a model ID to Client.Chat(), e.g., client.Chat(\"openai/gpt-4o\")")
	ErrNoMessages         = errors.New("no messages: add at least one message using .System(), .User(), or .Assistant()")
	ErrToolCallIDRequired = errors.New("tool message requires a tool_call_id: use .ToolResult(callID, content)")
)
