// Package tools provides AI-callable tool definitions, JSON Schema
// generation for their parameters, and a registry that executes tool calls
// returned by the model.
package tools

import (
	"context"
	"encoding/json"
)

// Tool defines the interface for AI-callable tools.
// Tools provide a schema for argument validation and a Call method for
// execution.
//
// Any type implementing Tool also satisfies core.Tool (which requires only
// Name and Description), allowing tools to be attached to a ChatRequest.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does. It is provided to the model to help it decide when to use the
	// tool.
	Description() string

	// Schema returns the JSON Schema that describes the tool's parameters.
	Schema() ToolSchema

	// Call executes the tool with the given arguments.
	// The args parameter contains the raw JSON arguments from the model.
	Call(ctx context.Context, args json.RawMessage) (any, error)
}

// ToolSchema describes the parameters a tool accepts.
// JSONSchema must be a valid JSON Schema object.
type ToolSchema struct {
	// JSONSchema is a valid JSON Schema object describing the tool's
	// parameters, e.g. {"type":"object","properties":{"location":{"type":"string"}}}.
	JSONSchema json.RawMessage `json:"json_schema"`
}
