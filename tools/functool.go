package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// FuncTool wraps a Go function as a Tool, deriving the parameter schema
// from the function's argument type.
type FuncTool[Args any] struct {
	name        string
	description string
	schema      json.RawMessage
	fn          func(ctx context.Context, args Args) (any, error)
}

// NewFunc creates a tool from a typed Go function. The parameter schema is
// generated from Args via reflection, so the model sees field names, types,
// and any jsonschema tag constraints:
//
//	weather := tools.NewFunc("get_weather", "Current weather for a city",
//	    func(ctx context.Context, args WeatherArgs) (any, error) {
//	        return lookup(args.Location)
//	    })
func NewFunc[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error)) (*FuncTool[Args], error) {
	schema, err := GenerateSchema[Args]()
	if err != nil {
		return nil, fmt.Errorf("tools: generating schema for %s: %w", name, err)
	}
	return &FuncTool[Args]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}, nil
}

// MustFunc is like NewFunc but panics on schema-generation failure.
// Useful for package-level tool definitions.
func MustFunc[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error)) *FuncTool[Args] {
	t, err := NewFunc(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the tool's unique identifier.
func (t *FuncTool[Args]) Name() string {
	return t.name
}

// Description returns the tool's description.
func (t *FuncTool[Args]) Description() string {
	return t.description
}

// Schema returns the generated parameter schema.
func (t *FuncTool[Args]) Schema() ToolSchema {
	return ToolSchema{JSONSchema: t.schema}
}

// Call decodes args into the function's argument type and invokes it.
func (t *FuncTool[Args]) Call(ctx context.Context, args json.RawMessage) (any, error) {
	var decoded Args
	if len(args) > 0 {
		if err := json.Unmarshal(args, &decoded); err != nil {
			return nil, fmt.Errorf("tools: decoding arguments for %s: %w", t.name, err)
		}
	}
	return t.fn(ctx, decoded)
}
