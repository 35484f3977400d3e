package openrouter

import "encoding/json"

// orRequest is the OpenRouter chat completions request body.
type orRequest struct {
	Model    string      `json:"model"`
	Messages []orMessage `json:"messages"`
	Stream   bool        `json:"stream,omitempty"`

	Temperature       *float32          `json:"temperature,omitempty"`
	MaxTokens         *int              `json:"max_tokens,omitempty"`
	TopP              *float32          `json:"top_p,omitempty"`
	TopK              *int              `json:"top_k,omitempty"`
	FrequencyPenalty  *float32          `json:"frequency_penalty,omitempty"`
	PresencePenalty   *float32          `json:"presence_penalty,omitempty"`
	RepetitionPenalty *float32          `json:"repetition_penalty,omitempty"`
	Stop              []string          `json:"stop,omitempty"`
	Seed              *int              `json:"seed,omitempty"`
	Tools             []orTool          `json:"tools,omitempty"`
	ToolChoice        string            `json:"tool_choice,omitempty"`
	ResponseFormat    *orResponseFormat `json:"response_format,omitempty"`
}

// orMessage is a message in OpenRouter wire format.
type orMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content"`
	Name       string       `json:"name,omitempty"`
	ToolCalls  []orToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
}

// orTool is a tool definition in OpenRouter wire format.
type orTool struct {
	Type     string     `json:"type"`
	Function orFunction `json:"function"`
}

// orFunction describes a callable function.
type orFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// orResponseFormat requests a specific output format.
type orResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// orToolCall is a complete tool call in a non-streaming response.
type orToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// orUsage is the token usage block.
type orUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// orResponse is a non-streaming chat completions response.
type orResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int       `json:"index"`
		Message      orMessage `json:"message"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Usage *orUsage `json:"usage,omitempty"`
}

// orStreamToolCall is a tool-call fragment inside a streamed delta.
// Index is always present; the remaining fields may each be absent or
// partial in any given fragment.
type orStreamToolCall struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// orStreamChunk is one streamed chat completions record.
type orStreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content   string             `json:"content,omitempty"`
			ToolCalls []orStreamToolCall `json:"tool_calls,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *orUsage `json:"usage,omitempty"`
}

// orErrorResponse is the OpenRouter error envelope. Codes arrive as numbers
// or strings depending on the failure, so the field is decoded lazily.
type orErrorResponse struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}
