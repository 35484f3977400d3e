package core

import (
	"context"
	"strings"
)

// ChatStream represents a streaming response from a provider.
//
// Channel Rules:
//   - Providers MUST close Ch, Err, and Final when finished
//   - On context cancellation, providers MUST terminate promptly and close channels
//   - Err channel emits at most one error
//   - Final channel emits at most once; on a mid-stream failure it carries the
//     partial response assembled from the deltas delivered before the failure,
//     so partial output is never discarded
//   - Chunks are emitted in strict arrival order over a bounded channel, so a
//     slow consumer directly delays consumption of the underlying byte stream
type ChatStream struct {
	// Ch emits text deltas in order. Closed when stream ends.
	Ch <-chan ChatChunk

	// Err emits at most one error. MUST be closed when stream ends.
	Err <-chan error

	// Final carries the assembled response (usage, finish reason, tool calls)
	// after stream completion, or the partial response on mid-stream failure.
	Final <-chan *ChatResponse
}

// DrainStream accumulates all deltas and returns the final ChatResponse.
// Blocks until stream completes or context cancels.
//
// On a mid-stream failure DrainStream returns both the partial response
// assembled so far and the error, in the manner of io.Reader returning
// n > 0 alongside a non-nil error. Callers that only care about complete
// responses may ignore the response when err != nil.
func DrainStream(ctx context.Context, s *ChatStream) (*ChatResponse, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var accumulated strings.Builder
	var streamErr error
	var finalResp *ChatResponse

	for {
		select {
		case <-ctx.Done():
			return partialResponse(finalResp, &accumulated), ctx.Err()

		case chunk, ok := <-s.Ch:
			if !ok {
				goto drained
			}
			accumulated.WriteString(chunk.Delta)

		case err, ok := <-s.Err:
			if ok && err != nil {
				streamErr = err
			}
			// Continue draining Ch even after an error

		case resp, ok := <-s.Final:
			if ok {
				finalResp = resp
			}
		}
	}

drained:
	// Pick up a trailing error, if any
	select {
	case err, ok := <-s.Err:
		if ok && err != nil {
			streamErr = err
		}
	default:
	}

	// Wait for the final response
	if finalResp == nil {
		select {
		case <-ctx.Done():
			return partialResponse(nil, &accumulated), ctx.Err()
		case resp, ok := <-s.Final:
			if ok {
				finalResp = resp
			}
		}
	}

	return partialResponse(finalResp, &accumulated), streamErr
}

// partialResponse merges accumulated deltas into the final response, creating
// one if the provider never sent it.
func partialResponse(resp *ChatResponse, accumulated *strings.Builder) *ChatResponse {
	if resp == nil {
		return &ChatResponse{Output: accumulated.String()}
	}
	if resp.Output == "" {
		resp.Output = accumulated.String()
	}
	return resp
}
