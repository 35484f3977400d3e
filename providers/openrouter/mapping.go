package openrouter

import (
	"encoding/json"

	"github.com/petal-labs/halo/core"
	"github.com/petal-labs/halo/tools"
)

// schemaProvider is satisfied by tools that publish a parameter schema.
// Tools implementing only core.Tool get an empty schema.
type schemaProvider interface {
	Schema() tools.ToolSchema
}

// mapMessages converts core messages to OpenRouter wire format.
func mapMessages(msgs []core.Message) []orMessage {
	result := make([]orMessage, len(msgs))
	for i, msg := range msgs {
		result[i] = orMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCalls:  mapOutboundToolCalls(msg.ToolCalls),
			ToolCallID: msg.ToolCallID,
		}
	}
	return result
}

// mapOutboundToolCalls converts assistant tool calls for replay in history.
func mapOutboundToolCalls(calls []core.ToolCall) []orToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]orToolCall, len(calls))
	for i, call := range calls {
		result[i].ID = call.ID
		result[i].Type = "function"
		result[i].Function.Name = call.Name
		result[i].Function.Arguments = string(call.Arguments)
	}
	return result
}

// mapTools converts core tools to OpenRouter tool definitions.
func mapTools(coreTools []core.Tool) []orTool {
	if len(coreTools) == 0 {
		return nil
	}

	result := make([]orTool, len(coreTools))
	for i, t := range coreTools {
		var params json.RawMessage
		if sp, ok := t.(schemaProvider); ok {
			params = sp.Schema().JSONSchema
		}
		if params == nil {
			params = json.RawMessage(`{}`)
		}

		result[i] = orTool{
			Type: "function",
			Function: orFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		}
	}
	return result
}

// buildRequest creates an OpenRouter API request from a core ChatRequest.
// Model aliases are resolved to fully-qualified OpenRouter IDs.
func buildRequest(req *core.ChatRequest, stream bool) *orRequest {
	orReq := &orRequest{
		Model:    string(ResolveModel(req.Model)),
		Messages: mapMessages(req.Messages),
		Stream:   stream,

		Temperature:       req.Temperature,
		MaxTokens:         req.MaxTokens,
		TopP:              req.TopP,
		TopK:              req.TopK,
		FrequencyPenalty:  req.FrequencyPenalty,
		PresencePenalty:   req.PresencePenalty,
		RepetitionPenalty: req.RepetitionPenalty,
		Stop:              req.Stop,
		Seed:              req.Seed,
	}

	if len(req.Tools) > 0 {
		orReq.Tools = mapTools(req.Tools)
		orReq.ToolChoice = req.ToolChoice
		if orReq.ToolChoice == "" {
			orReq.ToolChoice = "auto"
		}
	}

	if req.ResponseFormat != nil {
		orReq.ResponseFormat = &orResponseFormat{
			Type:       req.ResponseFormat.Type,
			JSONSchema: req.ResponseFormat.JSONSchema,
		}
	}

	return orReq
}

// mapResponse converts an OpenRouter response to a core ChatResponse.
// Only the first choice is used.
func mapResponse(resp *orResponse) (*core.ChatResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, newDecodeError(errNoChoices)
	}
	choice := resp.Choices[0]

	out := &core.ChatResponse{
		ID:           resp.ID,
		Model:        core.ModelID(resp.Model),
		Output:       choice.Message.Content,
		FinishReason: choice.FinishReason,
		ToolCalls:    mapInboundToolCalls(choice.Message.ToolCalls),
	}
	if resp.Usage != nil {
		out.Usage = core.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}

// mapInboundToolCalls converts complete response tool calls to core form.
func mapInboundToolCalls(calls []orToolCall) []core.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]core.ToolCall, len(calls))
	for i, call := range calls {
		args := call.Function.Arguments
		if args == "" {
			args = "{}"
		}
		result[i] = core.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(args),
		}
	}
	return result
}
