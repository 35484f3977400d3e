package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ToolCallFunc is the function signature for tool execution.
// Middleware wraps this function to add behavior.
type ToolCallFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Middleware wraps a ToolCallFunc to add behavior before and/or after
// execution. A middleware receives the next handler in the chain and
// returns a new handler.
type Middleware func(next ToolCallFunc) ToolCallFunc

// Chain combines multiple middleware into one. The first middleware is
// outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next ToolCallFunc) ToolCallFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// Wrap applies middleware around a tool's Call method, returning a Tool
// that can be registered in place of the original. Name, Description and
// Schema pass through unchanged.
func Wrap(tool Tool, middlewares ...Middleware) Tool {
	if len(middlewares) == 0 {
		return tool
	}
	return &wrappedTool{
		tool:    tool,
		wrapped: Chain(middlewares...)(tool.Call),
	}
}

type wrappedTool struct {
	tool    Tool
	wrapped ToolCallFunc
}

func (w *wrappedTool) Name() string        { return w.tool.Name() }
func (w *wrappedTool) Description() string { return w.tool.Description() }
func (w *wrappedTool) Schema() ToolSchema  { return w.tool.Schema() }

func (w *wrappedTool) Call(ctx context.Context, args json.RawMessage) (any, error) {
	ctx = withToolName(ctx, w.tool.Name())
	return w.wrapped(ctx, args)
}

type toolNameKey struct{}

func withToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}

// ToolNameFromContext returns the name of the tool being executed, set by
// Wrap for all middleware in the chain. Returns "" outside a wrapped call.
func ToolNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(toolNameKey{}).(string)
	return name
}

// WithTimeout returns middleware that bounds tool execution to d.
// The wrapped call runs in its own goroutine; on timeout the goroutine is
// abandoned with its context canceled and the call fails.
func WithTimeout(d time.Duration) Middleware {
	return func(next ToolCallFunc) ToolCallFunc {
		return func(ctx context.Context, args json.RawMessage) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			type result struct {
				value any
				err   error
			}
			ch := make(chan result, 1)

			go func() {
				v, err := next(ctx, args)
				ch <- result{v, err}
			}()

			select {
			case r := <-ch:
				return r.value, r.err
			case <-ctx.Done():
				return nil, fmt.Errorf("tool execution timeout after %v", d)
			}
		}
	}
}

// Logger is the interface accepted by WithLogging. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// WithLogging returns middleware that logs each call's tool name, duration
// and outcome. Arguments and results are never logged; they may carry user
// content.
func WithLogging(logger Logger) Middleware {
	return func(next ToolCallFunc) ToolCallFunc {
		return func(ctx context.Context, args json.RawMessage) (any, error) {
			name := ToolNameFromContext(ctx)
			start := time.Now()

			result, err := next(ctx, args)

			if err != nil {
				logger.Printf("tool %s failed after %v: %v", name, time.Since(start), err)
			} else {
				logger.Printf("tool %s completed in %v", name, time.Since(start))
			}
			return result, err
		}
	}
}

// RetryConfig configures WithRetry. The delay between attempts is fixed.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Wait is the fixed delay between attempts.
	Wait time.Duration

	// Retryable reports whether an error is worth retrying. When nil,
	// only context.DeadlineExceeded is retried.
	Retryable func(error) bool
}

// DefaultRetryConfig returns the retry defaults: 3 total attempts with a
// 100ms fixed wait.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Wait:        100 * time.Millisecond,
	}
}

// WithRetry returns middleware that retries failed tool calls.
// Context cancellation aborts the wait immediately.
func WithRetry(config RetryConfig) Middleware {
	retryable := config.Retryable
	if retryable == nil {
		retryable = func(err error) bool {
			return errors.Is(err, context.DeadlineExceeded)
		}
	}

	return func(next ToolCallFunc) ToolCallFunc {
		return func(ctx context.Context, args json.RawMessage) (any, error) {
			var lastErr error

			for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
				result, err := next(ctx, args)
				if err == nil {
					return result, nil
				}
				lastErr = err

				if !retryable(err) {
					return nil, err
				}
				if attempt == config.MaxAttempts {
					break
				}

				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(config.Wait):
				}
			}

			return nil, fmt.Errorf("tool call failed after %d attempts: %w", config.MaxAttempts, lastErr)
		}
	}
}
