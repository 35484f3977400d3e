// Package core provides the Halo SDK client and types for interacting with
// chat-completion providers.
//
// Halo is a Go client for OpenRouter-style chat APIs, covering synchronous
// and streamed completions, function/tool calling, and multi-turn
// conversation state. The core package defines the abstractions that
// providers implement.
//
// # Client and Provider
//
// The primary entry point is [Client], which wraps a [Provider] and adds
// telemetry, timeout, and retry logic behind a fluent builder API:
//
//	provider := openrouter.New(os.Getenv("OPENROUTER_API_KEY"))
//	client := core.NewClient(provider,
//	    core.WithRetryPolicy(core.DefaultRetryPolicy()),
//	    core.WithTimeout(60*time.Second),
//	)
//
// # ChatBuilder
//
// The [ChatBuilder] provides a fluent API for constructing chat requests:
//
//	resp, err := client.Chat("openai/gpt-4o").
//	    System("You are a helpful assistant.").
//	    User("Hello!").
//	    Temperature(0.7).
//	    GetResponse(ctx)
//
// ChatBuilder is NOT thread-safe. Each goroutine should create its own
// builder instance; use [ChatBuilder.Clone] to branch from a shared base.
//
// # Streaming
//
// Use [ChatBuilder.Stream] for channel-based streaming:
//
//	stream, err := client.Chat(model).User("Tell me a story.").Stream(ctx)
//	if err != nil {
//	    return err
//	}
//	for chunk := range stream.Ch {
//	    fmt.Print(chunk.Delta)
//	}
//
// The [ChatStream] type provides three channels:
//   - Ch: emits text deltas in order
//   - Err: emits at most one error
//   - Final: emits the assembled response with usage and tool calls
//
// [ChatBuilder.StreamEach] offers the same stream as a synchronous callback:
// return false from the callback to stop and keep the output collected so
// far. [DrainStream] accumulates a ChatStream into a final response.
//
// # Conversations
//
// [Conversation] manages append-only multi-turn history. A failed send
// leaves the user turn in the history and appends no assistant turn, so
// retrying never duplicates messages. Conversations are single-writer;
// callers must serialize sends.
//
// # Retries and errors
//
// Every call runs under the client's [RetryPolicy]. Transport failures and
// 5xx responses are retried; any 4xx is fatal and surfaces immediately as a
// [*ProviderError] carrying the server's status, code, and message. For
// streaming calls, retries wrap only connection setup, never delivered
// output.
package core
