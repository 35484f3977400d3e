// Package core provides the Halo SDK client and types.
package core

import (
	"context"
	"encoding/json"
)

// ModelID is a string identifier for a model.
// Using string avoids coupling to provider-specific enums.
type ModelID string

// Feature represents a capability that a provider may support.
type Feature string

const (
	FeatureChat          Feature = "chat"
	FeatureChatStreaming Feature = "chat_streaming"
	FeatureToolCalling   Feature = "tool_calling"
)

// ModelInfo describes a model available from a provider.
type ModelInfo struct {
	ID           ModelID   `json:"id"`
	DisplayName  string    `json:"display_name"`
	Capabilities []Feature `json:"capabilities"`
}

// HasCapability reports whether the model supports the given feature.
func (m ModelInfo) HasCapability(f Feature) bool {
	for _, cap := range m.Capabilities {
		if cap == f {
			return true
		}
	}
	return false
}

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool" // For tool result messages
)

// Message represents a single message in a conversation.
//
// Messages with RoleTool must carry ToolCallID (the ID of the tool call they
// answer). Assistant messages carrying ToolCalls may have empty Content.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For assistant messages requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool result messages (RoleTool)
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolCall represents a tool invocation requested by the model.
// Arguments holds the argument text exactly as received from the provider.
// For streamed tool calls it is the in-order concatenation of every fragment
// received; the SDK does not validate it. Callers decode the arguments when
// executing the tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Tool is the minimal interface for tool definitions attached to a request.
// The tools package provides full implementations with parameter schemas
// and execution.
type Tool interface {
	Name() string
	Description() string
}

// ToolExecutor executes a tool call on behalf of the agent loop.
// The tools package's Registry implements this interface.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) (any, error)
}

// ResponseFormat requests a specific output format from the model.
// Type is typically "text" or "json_object"; JSONSchema may carry a schema
// for providers that support structured output.
type ResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// Preset bundles generation parameters that are commonly tuned together.
// Nil fields are left unset. Providers may publish named presets (see
// providers/openrouter).
type Preset struct {
	Temperature       *float32
	TopP              *float32
	TopK              *int
	FrequencyPenalty  *float32
	PresencePenalty   *float32
	RepetitionPenalty *float32
}

// ChatRequest represents a request to a chat model.
// It is treated as immutable once dispatched; retries reuse the same value.
type ChatRequest struct {
	Model    ModelID   `json:"model"`
	Messages []Message `json:"messages"`

	Temperature       *float32        `json:"temperature,omitempty"`
	MaxTokens         *int            `json:"max_tokens,omitempty"`
	TopP              *float32        `json:"top_p,omitempty"`
	TopK              *int            `json:"top_k,omitempty"`
	FrequencyPenalty  *float32        `json:"frequency_penalty,omitempty"`
	PresencePenalty   *float32        `json:"presence_penalty,omitempty"`
	RepetitionPenalty *float32        `json:"repetition_penalty,omitempty"`
	Stop              []string        `json:"stop,omitempty"`
	Seed              *int            `json:"seed,omitempty"`
	ToolChoice        string          `json:"tool_choice,omitempty"`
	ResponseFormat    *ResponseFormat `json:"response_format,omitempty"`

	Tools []Tool `json:"-"` // Tools are mapped to wire format by providers
}

// ChatResponse represents a response from a chat model.
// For providers returning multiple choices, only the first choice is used.
type ChatResponse struct {
	ID           string     `json:"id"`
	Model        ModelID    `json:"model"`
	Output       string     `json:"output"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        TokenUsage `json:"usage"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
}

// HasToolCalls reports whether the response contains any tool calls.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// FirstToolCall returns the first tool call, or nil if there are none.
func (r *ChatResponse) FirstToolCall() *ToolCall {
	if len(r.ToolCalls) > 0 {
		return &r.ToolCalls[0]
	}
	return nil
}

// AssistantMessage converts the response into an assistant Message suitable
// for appending to a conversation history, preserving tool calls.
func (r *ChatResponse) AssistantMessage() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   r.Output,
		ToolCalls: r.ToolCalls,
	}
}

// ChatChunk represents an incremental streaming response.
// Delta contains incremental assistant text.
type ChatChunk struct {
	Delta string `json:"delta"`
}
