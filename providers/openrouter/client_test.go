package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petal-labs/halo/core"
)

func TestChatSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Path = %q, want /chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization header incorrect")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type header incorrect")
		}

		w.Header().Set("x-request-id", "req-abc123")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{
			"id": "gen-123",
			"model": "openai/gpt-4o",
			"choices": [
				{
					"index": 0,
					"message": {"role": "assistant", "content": "Hello! How can I help you?"},
					"finish_reason": "stop"
				}
			],
			"usage": {"prompt_tokens": 10, "completion_tokens": 8, "total_tokens": 18}
		}`)
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	resp, err := p.Chat(context.Background(), &core.ChatRequest{
		Model: "openai/gpt-4o",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Hello"},
		},
	})

	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if resp.ID != "gen-123" {
		t.Errorf("ID = %q, want %q", resp.ID, "gen-123")
	}

	if resp.Model != "openai/gpt-4o" {
		t.Errorf("Model = %q, want %q", resp.Model, "openai/gpt-4o")
	}

	if resp.Output != "Hello! How can I help you?" {
		t.Errorf("Output = %q, want %q", resp.Output, "Hello! How can I help you?")
	}

	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, want %q", resp.FinishReason, "stop")
	}

	if resp.Usage.PromptTokens != 10 {
		t.Errorf("Usage.PromptTokens = %d, want 10", resp.Usage.PromptTokens)
	}

	if resp.Usage.CompletionTokens != 8 {
		t.Errorf("Usage.CompletionTokens = %d, want 8", resp.Usage.CompletionTokens)
	}

	if resp.Usage.TotalTokens != 18 {
		t.Errorf("Usage.TotalTokens = %d, want 18", resp.Usage.TotalTokens)
	}
}

func TestChatResolvesModelAlias(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req orRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		gotModel = req.Model

		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{
			"id": "gen-1",
			"model": "openai/gpt-4o",
			"choices": [{"message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]
		}`)
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	_, err := p.Chat(context.Background(), &core.ChatRequest{
		Model:    "gpt-4o",
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if gotModel != "openai/gpt-4o" {
		t.Errorf("request model = %q, want %q", gotModel, "openai/gpt-4o")
	}
}

func TestChatWithToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{
			"id": "gen-456",
			"model": "openai/gpt-4o",
			"choices": [
				{
					"message": {
						"role": "assistant",
						"content": "",
						"tool_calls": [
							{
								"id": "call_abc123",
								"type": "function",
								"function": {
									"name": "get_weather",
									"arguments": "{\"location\":\"San Francisco\",\"unit\":\"celsius\"}"
								}
							}
						]
					},
					"finish_reason": "tool_calls"
				}
			]
		}`)
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	resp, err := p.Chat(context.Background(), &core.ChatRequest{
		Model:    "openai/gpt-4o",
		Messages: []core.Message{{Role: core.RoleUser, Content: "Weather in SF?"}},
	})

	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if !resp.HasToolCalls() {
		t.Fatal("HasToolCalls() = false, want true")
	}

	call := resp.ToolCalls[0]
	if call.ID != "call_abc123" {
		t.Errorf("ToolCall.ID = %q, want %q", call.ID, "call_abc123")
	}
	if call.Name != "get_weather" {
		t.Errorf("ToolCall.Name = %q, want %q", call.Name, "get_weather")
	}

	var args map[string]string
	if err := json.Unmarshal(call.Arguments, &args); err != nil {
		t.Fatalf("unmarshaling arguments: %v", err)
	}
	if args["location"] != "San Francisco" {
		t.Errorf("arguments location = %q, want %q", args["location"], "San Francisco")
	}
}

func TestChatErrorNormalization(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantSentinel error
		wantCode     string
	}{
		{
			name:         "bad request",
			status:       http.StatusBadRequest,
			body:         `{"error": {"code": 400, "message": "invalid model"}}`,
			wantSentinel: core.ErrBadRequest,
			wantCode:     "400",
		},
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"error": {"code": 401, "message": "invalid API key"}}`,
			wantSentinel: core.ErrUnauthorized,
			wantCode:     "401",
		},
		{
			name:         "forbidden",
			status:       http.StatusForbidden,
			body:         `{"error": {"code": "moderation", "message": "flagged input"}}`,
			wantSentinel: core.ErrUnauthorized,
			wantCode:     "moderation",
		},
		{
			name:         "not found",
			status:       http.StatusNotFound,
			body:         `{"error": {"code": 404, "message": "no such model"}}`,
			wantSentinel: core.ErrNotFound,
			wantCode:     "404",
		},
		{
			name:         "rate limited",
			status:       http.StatusTooManyRequests,
			body:         `{"error": {"code": 429, "message": "slow down"}}`,
			wantSentinel: core.ErrRateLimited,
			wantCode:     "429",
		},
		{
			name:         "server error",
			status:       http.StatusInternalServerError,
			body:         `{"error": {"code": 500, "message": "upstream exploded"}}`,
			wantSentinel: core.ErrServer,
			wantCode:     "500",
		},
		{
			name:         "non-JSON error body",
			status:       http.StatusBadGateway,
			body:         `Bad Gateway`,
			wantSentinel: core.ErrServer,
			wantCode:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("x-request-id", "req-err")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			p := New("test-key", WithBaseURL(server.URL))
			_, err := p.Chat(context.Background(), &core.ChatRequest{
				Model:    "openai/gpt-4o",
				Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
			})

			if err == nil {
				t.Fatal("Chat() error = nil, want non-nil")
			}

			if !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Chat() error = %v, want sentinel %v", err, tt.wantSentinel)
			}

			var provErr *core.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("Chat() error is not a *core.ProviderError: %v", err)
			}
			if provErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", provErr.Status, tt.status)
			}
			if provErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", provErr.Code, tt.wantCode)
			}
			if provErr.RequestID != "req-err" {
				t.Errorf("RequestID = %q, want %q", provErr.RequestID, "req-err")
			}
			if provErr.Provider != "openrouter" {
				t.Errorf("Provider = %q, want %q", provErr.Provider, "openrouter")
			}
		})
	}
}

func TestChatNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	p := New("test-key", WithBaseURL(server.URL))
	_, err := p.Chat(context.Background(), &core.ChatRequest{
		Model:    "openai/gpt-4o",
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
	})

	if !errors.Is(err, core.ErrNetwork) {
		t.Fatalf("Chat() error = %v, want ErrNetwork", err)
	}

	var provErr *core.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Chat() error is not a *core.ProviderError: %v", err)
	}
	if provErr.Status != 0 {
		t.Errorf("Status = %d, want 0 for transport failure", provErr.Status)
	}
	if provErr.Code != core.CodeNetworkError {
		t.Errorf("Code = %q, want %q", provErr.Code, core.CodeNetworkError)
	}
}

func TestChatEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"id": "gen-789", "model": "openai/gpt-4o", "choices": []}`)
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	_, err := p.Chat(context.Background(), &core.ChatRequest{
		Model:    "openai/gpt-4o",
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
	})

	if !errors.Is(err, core.ErrDecode) {
		t.Errorf("Chat() error = %v, want ErrDecode", err)
	}
}

func TestChatAttributionHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("HTTP-Referer") != "https://example.com" {
			t.Errorf("HTTP-Referer = %q, want %q", r.Header.Get("HTTP-Referer"), "https://example.com")
		}
		if r.Header.Get("X-Title") != "Example App" {
			t.Errorf("X-Title = %q, want %q", r.Header.Get("X-Title"), "Example App")
		}
		if r.Header.Get("X-Custom") != "custom-value" {
			t.Errorf("X-Custom = %q, want %q", r.Header.Get("X-Custom"), "custom-value")
		}

		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{
			"id": "gen-1",
			"model": "openai/gpt-4o",
			"choices": [{"message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]
		}`)
	}))
	defer server.Close()

	p := New("test-key",
		WithBaseURL(server.URL),
		WithReferer("https://example.com"),
		WithAppTitle("Example App"),
		WithHeader("X-Custom", "custom-value"),
	)
	_, err := p.Chat(context.Background(), &core.ChatRequest{
		Model:    "openai/gpt-4o",
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
}
