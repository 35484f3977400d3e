package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMaxRoundsExceeded is returned when the agent loop hits its round limit
// while the model is still requesting tool calls.
var ErrMaxRoundsExceeded = errors.New("agent: max tool rounds exceeded")

// Agent runs a bounded request/tool-execution loop over a Conversation:
// send, execute any returned tool calls, append the results, and repeat
// until the model stops calling tools or the round limit is reached.
//
// Agent shares the Conversation's single-writer discipline: do not run the
// same Agent (or touch its Conversation) from multiple goroutines.
type Agent struct {
	client    *Client
	executor  ToolExecutor
	tools     []Tool
	maxRounds int
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithMaxRounds sets the maximum number of tool-execution rounds per Run
// (default 8).
func WithMaxRounds(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxRounds = n
		}
	}
}

// NewAgent creates an agent that executes tool calls through executor.
// The given tools are attached to every request so the model can call them.
func NewAgent(client *Client, executor ToolExecutor, tools []Tool, opts ...AgentOption) *Agent {
	a := &Agent{
		client:    client,
		executor:  executor,
		tools:     tools,
		maxRounds: 8,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run sends userMessage on the conversation and resolves tool calls until
// the model produces a final answer. The conversation history records every
// intermediate assistant and tool message, so a failed run leaves the turns
// that actually completed.
func (a *Agent) Run(ctx context.Context, conv *Conversation, userMessage string) (*ChatResponse, error) {
	conv.memory.AddMessage(Message{
		Role:    RoleUser,
		Content: userMessage,
	})

	for round := 0; round < a.maxRounds; round++ {
		resp, err := a.dispatch(ctx, conv)
		if err != nil {
			return nil, err
		}

		conv.memory.AddMessage(resp.AssistantMessage())

		if !resp.HasToolCalls() {
			return resp, nil
		}

		for _, call := range resp.ToolCalls {
			conv.memory.AddMessage(a.executeCall(ctx, call))
		}
	}

	return nil, ErrMaxRoundsExceeded
}

// dispatch sends the current history with the agent's tools attached.
func (a *Agent) dispatch(ctx context.Context, conv *Conversation) (*ChatResponse, error) {
	b := conv.builder()
	if len(a.tools) > 0 {
		b = b.Tools(a.tools...)
	}
	return b.GetResponse(ctx)
}

// executeCall runs one tool call and wraps the outcome as a tool message.
// Execution failures become error payloads for the model rather than
// aborting the run; the model decides how to proceed.
func (a *Agent) executeCall(ctx context.Context, call ToolCall) Message {
	result, err := a.executor.Execute(ctx, call)
	if err != nil {
		return toolMessage(call.ID, map[string]string{"error": err.Error()})
	}
	return toolMessage(call.ID, result)
}

// toolMessage builds a RoleTool message answering the given call ID.
func toolMessage(callID string, content any) Message {
	var text string
	switch v := content.(type) {
	case string:
		text = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			text = fmt.Sprintf("%v", v)
		} else {
			text = string(data)
		}
	}
	return Message{
		Role:       RoleTool,
		Content:    text,
		ToolCallID: callID,
	}
}
