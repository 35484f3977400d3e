// Package toolcalls provides shared streaming tool-call assembly utilities.
package toolcalls

import (
	"encoding/json"
	"strings"

	"github.com/petal-labs/halo/core"
)

// Fragment represents one streaming tool-call delta fragment. Index is
// always present and identifies the call within the stream; ID, Name, and
// Arguments may each be absent or partial in any given fragment.
type Fragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

type assemblingCall struct {
	ID        string
	Name      string
	Arguments strings.Builder
}

// Assembler accumulates fragmented tool calls and emits them whole once the
// stream ends. It is scoped to a single streaming call and must be fed
// fragments in arrival order, since argument concatenation is
// order-dependent.
type Assembler struct {
	calls map[int]*assemblingCall
}

// NewAssembler creates a tool-call assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		calls: make(map[int]*assemblingCall),
	}
}

// AddFragment applies a streaming fragment, creating a call entry for its
// index if needed. ID and Name initialize or overwrite their fields when
// present; Arguments is always appended, never overwritten.
func (a *Assembler) AddFragment(f Fragment) {
	call, exists := a.calls[f.Index]
	if !exists {
		call = &assemblingCall{}
		a.calls[f.Index] = call
	}

	if f.ID != "" {
		call.ID = f.ID
	}
	if f.Name != "" {
		call.Name = f.Name
	}
	if f.Arguments != "" {
		call.Arguments.WriteString(f.Arguments)
	}
}

// Len returns the number of distinct tool calls seen so far.
func (a *Assembler) Len() int {
	return len(a.calls)
}

// Finalize returns the assembled tool calls ordered by index. Each call's
// Arguments is the exact in-order concatenation of its fragments; the
// assembler does not check that the result is well-formed JSON. That is
// the caller's concern when it decodes the arguments. Calls that streamed
// no argument text at all get an empty JSON object.
func (a *Assembler) Finalize() []core.ToolCall {
	if len(a.calls) == 0 {
		return nil
	}

	maxIndex := 0
	for idx := range a.calls {
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	result := make([]core.ToolCall, 0, len(a.calls))
	for i := 0; i <= maxIndex; i++ {
		call, exists := a.calls[i]
		if !exists {
			continue
		}

		args := call.Arguments.String()
		if args == "" {
			args = "{}"
		}

		result = append(result, core.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: json.RawMessage(args),
		})
	}

	return result
}
