package openrouter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/petal-labs/halo/core"
	"github.com/petal-labs/halo/tools"
)

// schemaTool implements core.Tool plus Schema() for mapping tests.
type schemaTool struct {
	name   string
	desc   string
	schema json.RawMessage
}

func (s *schemaTool) Name() string        { return s.name }
func (s *schemaTool) Description() string { return s.desc }
func (s *schemaTool) Schema() tools.ToolSchema {
	return tools.ToolSchema{JSONSchema: s.schema}
}
func (s *schemaTool) Call(ctx context.Context, args json.RawMessage) (any, error) {
	return nil, nil
}

// bareTool implements only core.Tool, without a schema.
type bareTool struct{ name string }

func (b *bareTool) Name() string        { return b.name }
func (b *bareTool) Description() string { return "no schema" }

func TestMapMessages(t *testing.T) {
	msgs := []core.Message{
		{Role: core.RoleSystem, Content: "You are helpful."},
		{Role: core.RoleUser, Content: "What's the weather?"},
		{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{
				{ID: "call_1", Name: "get_weather", Arguments: json.RawMessage(`{"city":"Paris"}`)},
			},
		},
		{Role: core.RoleTool, Content: `{"temp": 18}`, ToolCallID: "call_1"},
	}

	mapped := mapMessages(msgs)
	if len(mapped) != 4 {
		t.Fatalf("len(mapped) = %d, want 4", len(mapped))
	}

	if mapped[0].Role != "system" {
		t.Errorf("mapped[0].Role = %q, want %q", mapped[0].Role, "system")
	}
	if mapped[1].Content != "What's the weather?" {
		t.Errorf("mapped[1].Content = %q, want %q", mapped[1].Content, "What's the weather?")
	}

	// Assistant tool calls are replayed in wire format
	if len(mapped[2].ToolCalls) != 1 {
		t.Fatalf("mapped[2] has %d tool calls, want 1", len(mapped[2].ToolCalls))
	}
	tc := mapped[2].ToolCalls[0]
	if tc.ID != "call_1" {
		t.Errorf("ToolCalls[0].ID = %q, want %q", tc.ID, "call_1")
	}
	if tc.Type != "function" {
		t.Errorf("ToolCalls[0].Type = %q, want %q", tc.Type, "function")
	}
	if tc.Function.Name != "get_weather" {
		t.Errorf("ToolCalls[0].Function.Name = %q, want %q", tc.Function.Name, "get_weather")
	}
	if tc.Function.Arguments != `{"city":"Paris"}` {
		t.Errorf("ToolCalls[0].Function.Arguments = %q, want %q", tc.Function.Arguments, `{"city":"Paris"}`)
	}

	if mapped[3].Role != "tool" {
		t.Errorf("mapped[3].Role = %q, want %q", mapped[3].Role, "tool")
	}
	if mapped[3].ToolCallID != "call_1" {
		t.Errorf("mapped[3].ToolCallID = %q, want %q", mapped[3].ToolCallID, "call_1")
	}
}

func TestMapTools(t *testing.T) {
	coreTools := []core.Tool{
		&schemaTool{
			name:   "get_weather",
			desc:   "Current weather",
			schema: json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`),
		},
		&bareTool{name: "noop"},
	}

	mapped := mapTools(coreTools)
	if len(mapped) != 2 {
		t.Fatalf("len(mapped) = %d, want 2", len(mapped))
	}

	if mapped[0].Type != "function" {
		t.Errorf("mapped[0].Type = %q, want %q", mapped[0].Type, "function")
	}
	if mapped[0].Function.Name != "get_weather" {
		t.Errorf("mapped[0].Function.Name = %q, want %q", mapped[0].Function.Name, "get_weather")
	}
	if string(mapped[0].Function.Parameters) == "{}" {
		t.Error("mapped[0].Function.Parameters is empty, want published schema")
	}

	// Tools without a schema get an empty parameters object
	if string(mapped[1].Function.Parameters) != "{}" {
		t.Errorf("mapped[1].Function.Parameters = %q, want %q", mapped[1].Function.Parameters, "{}")
	}
}

func TestBuildRequestParameters(t *testing.T) {
	temp := float32(0.7)
	maxTokens := 512
	topP := float32(0.9)
	seed := 42

	req := &core.ChatRequest{
		Model:       "gpt-4o",
		Messages:    []core.Message{{Role: core.RoleUser, Content: "Hi"}},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
		TopP:        &topP,
		Seed:        &seed,
		Stop:        []string{"END"},
	}

	orReq := buildRequest(req, true)

	if orReq.Model != "openai/gpt-4o" {
		t.Errorf("Model = %q, want alias resolved to %q", orReq.Model, "openai/gpt-4o")
	}
	if !orReq.Stream {
		t.Error("Stream = false, want true")
	}
	if orReq.Temperature == nil || *orReq.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", orReq.Temperature)
	}
	if orReq.MaxTokens == nil || *orReq.MaxTokens != 512 {
		t.Errorf("MaxTokens = %v, want 512", orReq.MaxTokens)
	}
	if orReq.Seed == nil || *orReq.Seed != 42 {
		t.Errorf("Seed = %v, want 42", orReq.Seed)
	}
	if len(orReq.Stop) != 1 || orReq.Stop[0] != "END" {
		t.Errorf("Stop = %v, want [END]", orReq.Stop)
	}
}

func TestBuildRequestToolChoiceDefault(t *testing.T) {
	req := &core.ChatRequest{
		Model:    "openai/gpt-4o",
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
		Tools:    []core.Tool{&bareTool{name: "noop"}},
	}

	orReq := buildRequest(req, false)
	if orReq.ToolChoice != "auto" {
		t.Errorf("ToolChoice = %q, want %q when tools are present", orReq.ToolChoice, "auto")
	}

	req.ToolChoice = "none"
	orReq = buildRequest(req, false)
	if orReq.ToolChoice != "none" {
		t.Errorf("ToolChoice = %q, want explicit %q preserved", orReq.ToolChoice, "none")
	}
}

func TestBuildRequestNoToolChoiceWithoutTools(t *testing.T) {
	req := &core.ChatRequest{
		Model:    "openai/gpt-4o",
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
	}

	orReq := buildRequest(req, false)
	if orReq.ToolChoice != "" {
		t.Errorf("ToolChoice = %q, want empty without tools", orReq.ToolChoice)
	}
	if orReq.Tools != nil {
		t.Errorf("Tools = %v, want nil", orReq.Tools)
	}
}

func TestBuildRequestResponseFormat(t *testing.T) {
	req := &core.ChatRequest{
		Model:    "openai/gpt-4o",
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
		ResponseFormat: &core.ResponseFormat{
			Type: "json_object",
		},
	}

	orReq := buildRequest(req, false)
	if orReq.ResponseFormat == nil {
		t.Fatal("ResponseFormat = nil, want non-nil")
	}
	if orReq.ResponseFormat.Type != "json_object" {
		t.Errorf("ResponseFormat.Type = %q, want %q", orReq.ResponseFormat.Type, "json_object")
	}
}

func TestMapInboundToolCallsEmptyArguments(t *testing.T) {
	calls := []orToolCall{{ID: "call_1", Type: "function"}}
	calls[0].Function.Name = "noop"

	mapped := mapInboundToolCalls(calls)
	if len(mapped) != 1 {
		t.Fatalf("len(mapped) = %d, want 1", len(mapped))
	}
	if string(mapped[0].Arguments) != "{}" {
		t.Errorf("Arguments = %q, want %q for empty arguments", mapped[0].Arguments, "{}")
	}
}
