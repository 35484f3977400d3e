package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/petal-labs/halo/core"
)

// ErrDuplicateTool is returned when attempting to register a tool with a name
// that is already registered.
var ErrDuplicateTool = errors.New("tool already registered")

// ErrToolNotFound is returned when a tool call names a tool that is not in
// the registry.
var ErrToolNotFound = errors.New("tool not found")

// Registry manages a collection of tools indexed by name. It implements
// core.ToolExecutor, so it can be handed directly to an agent loop.
// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
// Returns ErrDuplicateTool if a tool with the same name is already registered.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return errors.New("tool cannot be nil")
	}

	name := t.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return ErrDuplicateTool
	}

	r.tools[name] = t
	return nil
}

// MustRegister registers tools and panics on failure. Useful for wiring a
// fixed tool set at startup.
func (r *Registry) MustRegister(ts ...Tool) {
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			panic(fmt.Sprintf("tools: registering %s: %v", t.Name(), err))
		}
	}
}

// Get retrieves a tool by name.
// Returns the tool and true if found, or nil and false if not found.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// List returns all registered tools.
// The returned slice is a copy and safe to modify.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		result = append(result, t)
	}
	return result
}

// CoreTools returns the registered tools as core.Tool values, suitable for
// attaching to a chat request or an agent.
func (r *Registry) CoreTools() []core.Tool {
	ts := r.List()
	result := make([]core.Tool, 0, len(ts))
	for _, t := range ts {
		result = append(result, t)
	}
	return result
}

// Execute finds the tool named by the call and invokes it with the call's
// arguments. Streamed tool calls can carry malformed argument JSON; the
// arguments are validated here, before the tool sees them.
func (r *Registry) Execute(ctx context.Context, call core.ToolCall) (any, error) {
	tool, ok := r.Get(call.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, call.Name)
	}
	if len(call.Arguments) > 0 && !json.Valid(call.Arguments) {
		return nil, fmt.Errorf("tool %q: arguments are not valid JSON", call.Name)
	}
	return tool.Call(ctx, call.Arguments)
}
