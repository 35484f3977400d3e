package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/petal-labs/halo/core"
	"github.com/petal-labs/halo/providers/internal/sse"
	"github.com/petal-labs/halo/providers/internal/toolcalls"
)

// maxStreamDecodeErrors is the number of malformed stream records tolerated
// before the stream is terminated. Single bad records are absorbed (providers
// interleave keep-alives and the occasional garbage line), but a stream that
// is mostly undecodable must not quietly end as an empty success.
const maxStreamDecodeErrors = 5

// streamChunkBuffer bounds how far decode may run ahead of the consumer.
// A slow consumer therefore delays reads from the transport: backpressure
// is implicit and deliberate.
const streamChunkBuffer = 16

// doStreamChat performs a streaming chat completion request. Failures in
// this setup phase (connection errors, non-success status) surface as
// ordinary errors and remain retryable by the core client; once the stream
// is returned the call is committed.
func (p *OpenRouter) doStreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	orReq := buildRequest(req, true)

	body, err := json.Marshal(orReq)
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := p.config.BaseURL + chatCompletionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}

	for key, values := range p.buildHeaders() {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.streamClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody, resp.Header.Get("x-request-id"))
	}

	chunkCh := make(chan core.ChatChunk, streamChunkBuffer)
	errCh := make(chan error, 1)
	finalCh := make(chan *core.ChatResponse, 1)

	go p.processStream(ctx, resp.Body, chunkCh, errCh, finalCh)

	return &core.ChatStream{
		Ch:    chunkCh,
		Err:   errCh,
		Final: finalCh,
	}, nil
}

// streamState accumulates per-call decode state: response metadata, the
// tool-call assembler, and the decode-failure count. It is discarded once
// the final response is assembled.
type streamState struct {
	responseID     string
	responseModel  string
	finishReason   string
	usage          *orUsage
	assembler      *toolcalls.Assembler
	decodeFailures int
}

// final assembles the response from everything accumulated so far. Output
// is left empty; consumers assemble it from the deltas they received.
func (s *streamState) final() *core.ChatResponse {
	resp := &core.ChatResponse{
		ID:           s.responseID,
		Model:        core.ModelID(s.responseModel),
		FinishReason: s.finishReason,
		ToolCalls:    s.assembler.Finalize(),
	}
	if s.usage != nil {
		resp.Usage = core.TokenUsage{
			PromptTokens:     s.usage.PromptTokens,
			CompletionTokens: s.usage.CompletionTokens,
			TotalTokens:      s.usage.TotalTokens,
		}
	}
	return resp
}

// processStream reads the SSE byte stream and emits chunks in arrival
// order. On any failure after the first byte, the partial final response is
// emitted alongside the error so already-delivered output is not discarded.
func (p *OpenRouter) processStream(
	ctx context.Context,
	body io.ReadCloser,
	chunkCh chan<- core.ChatChunk,
	errCh chan<- error,
	finalCh chan<- *core.ChatResponse,
) {
	defer body.Close()
	defer close(chunkCh)
	defer close(errCh)
	defer close(finalCh)

	scanner := &sse.Scanner{}
	state := &streamState{assembler: toolcalls.NewAssembler()}

	fail := func(err error) {
		errCh <- err
		finalCh <- state.final()
	}

	buf := make([]byte, 4096)
	for !scanner.Done() {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, payload := range scanner.Feed(buf[:n]) {
				if err := p.handleRecord(ctx, payload, state, chunkCh); err != nil {
					fail(err)
					return
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				// End of input without the sentinel is an implicit end of
				// stream; a trailing unterminated record is still processed.
				for _, payload := range scanner.Flush() {
					if err := p.handleRecord(ctx, payload, state, chunkCh); err != nil {
						fail(err)
						return
					}
				}
				break
			}
			if ctx.Err() != nil {
				fail(ctx.Err())
				return
			}
			fail(newNetworkError(readErr))
			return
		}
	}

	finalCh <- state.final()
}

// handleRecord decodes one stream record and routes its contents: content
// deltas to the chunk channel, tool-call fragments to the assembler, and
// finish reason and usage into the stream state. Malformed records are
// absorbed up to maxStreamDecodeErrors.
func (p *OpenRouter) handleRecord(
	ctx context.Context,
	payload []byte,
	state *streamState,
	chunkCh chan<- core.ChatChunk,
) error {
	var chunk orStreamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		state.decodeFailures++
		if state.decodeFailures > maxStreamDecodeErrors {
			return newDecodeError(err)
		}
		// Treat as a lost record and keep going
		return nil
	}

	if chunk.ID != "" {
		state.responseID = chunk.ID
	}
	if chunk.Model != "" {
		state.responseModel = chunk.Model
	}
	if chunk.Usage != nil {
		state.usage = chunk.Usage
	}

	for _, choice := range chunk.Choices {
		if choice.FinishReason != "" {
			state.finishReason = choice.FinishReason
		}

		if choice.Delta.Content != "" {
			select {
			case chunkCh <- core.ChatChunk{Delta: choice.Delta.Content}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for _, tc := range choice.Delta.ToolCalls {
			state.assembler.AddFragment(toolcalls.Fragment{
				Index:     tc.Index,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}

	return nil
}
