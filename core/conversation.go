package core

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is the interface for managing conversation history.
// History is append-only: messages are added as turns complete and are
// never deleted for the lifetime of the conversation.
type Memory interface {
	// AddMessage appends a message to the conversation history.
	AddMessage(msg Message)

	// AddMessages appends multiple messages to the conversation history.
	AddMessages(msgs []Message)

	// GetHistory returns all messages in the conversation.
	GetHistory() []Message

	// GetLastN returns the last N messages in the conversation.
	GetLastN(n int) []Message

	// Len returns the number of messages in the conversation.
	Len() int
}

// InMemoryStore is a thread-safe in-memory implementation of the Memory
// interface. Suitable for single-session conversations that don't require
// persistence; conversation state lives only as long as the owning process.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

// NewInMemoryStore creates a new in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messages: make([]Message, 0),
	}
}

// AddMessage appends a message to the conversation history.
func (m *InMemoryStore) AddMessage(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// AddMessages appends multiple messages to the conversation history.
func (m *InMemoryStore) AddMessages(msgs []Message) {
	if len(msgs) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msgs...)
}

// GetHistory returns a copy of all messages in the conversation.
func (m *InMemoryStore) GetHistory() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Message, len(m.messages))
	copy(result, m.messages)
	return result
}

// GetLastN returns the last N messages in the conversation.
// If N is greater than the number of messages, returns all messages.
func (m *InMemoryStore) GetLastN(n int) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 {
		return nil
	}

	if n >= len(m.messages) {
		result := make([]Message, len(m.messages))
		copy(result, m.messages)
		return result
	}

	start := len(m.messages) - n
	result := make([]Message, n)
	copy(result, m.messages[start:])
	return result
}

// Len returns the number of messages in the conversation.
func (m *InMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// -----------------------------------------------------------------------------
// Conversation Session
// -----------------------------------------------------------------------------

// Conversation provides a high-level API for multi-turn conversations with
// automatic history management.
//
// Concurrent Send/SendStream calls against the same Conversation are not
// safe and must be serialized by the caller: each send is a compound
// append-dispatch-append operation and the store performs no locking across
// it. This is deliberate single-writer discipline, not an oversight.
type Conversation struct {
	id     string
	memory Memory
	client *Client
	model  ModelID
	system string
	preset *Preset
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithSystemMessage sets a system message for the conversation.
func WithSystemMessage(system string) ConversationOption {
	return func(c *Conversation) {
		c.system = system
	}
}

// WithMemoryStore sets a custom memory store for the conversation.
func WithMemoryStore(memory Memory) ConversationOption {
	return func(c *Conversation) {
		c.memory = memory
	}
}

// WithPreset sets default generation parameters applied to every send.
// Per-call options passed to SendWith take precedence.
func WithPreset(p Preset) ConversationOption {
	return func(c *Conversation) {
		c.preset = &p
	}
}

// NewConversation creates a new conversation session with the given client
// and model. If a system message is configured it seeds the history.
func NewConversation(client *Client, model ModelID, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		id:     uuid.NewString(),
		memory: NewInMemoryStore(),
		client: client,
		model:  model,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.system != "" {
		c.memory.AddMessage(Message{
			Role:    RoleSystem,
			Content: c.system,
		})
	}

	return c
}

// ID returns the conversation's unique session identifier.
func (c *Conversation) ID() string {
	return c.id
}

// Model returns the conversation's selected model.
func (c *Conversation) Model() ModelID {
	return c.model
}

// Send sends a user message and returns the assistant's response.
// Uses context.Background() internally.
func (c *Conversation) Send(userMessage string) (*ChatResponse, error) {
	return c.SendWithContext(context.Background(), userMessage)
}

// SendWithContext sends a user message with context and returns the
// assistant's response, appending both turns to the history.
//
// On failure the user message remains appended and no assistant message is
// added: the history reflects exactly the messages actually sent, so
// retrying a failed send does not duplicate the user turn.
func (c *Conversation) SendWithContext(ctx context.Context, userMessage string) (*ChatResponse, error) {
	c.memory.AddMessage(Message{
		Role:    RoleUser,
		Content: userMessage,
	})

	resp, err := c.builder().GetResponse(ctx)
	if err != nil {
		return nil, err
	}

	c.memory.AddMessage(resp.AssistantMessage())
	return resp, nil
}

// SendStream sends a user message as a streaming request, invoking fn for
// each content delta in arrival order. Returning false from fn stops the
// stream; the partial response is then committed to history as the
// assistant turn.
//
// The failure asymmetry of SendWithContext applies: if the stream fails
// before completing, the user message stays in the history and no assistant
// message is appended.
func (c *Conversation) SendStream(ctx context.Context, userMessage string, fn func(ChatChunk) bool) (*ChatResponse, error) {
	c.memory.AddMessage(Message{
		Role:    RoleUser,
		Content: userMessage,
	})

	resp, err := c.builder().StreamEach(ctx, fn)
	if err != nil {
		return nil, err
	}

	c.memory.AddMessage(resp.AssistantMessage())
	return resp, nil
}

// AddToolResults appends tool result messages for previously returned tool
// calls, so the next send carries them to the model.
func (c *Conversation) AddToolResults(results ...Message) {
	c.memory.AddMessages(results)
}

// builder assembles a request from the full history plus conversation
// defaults.
func (c *Conversation) builder() *ChatBuilder {
	b := c.client.Chat(c.model).Messages(c.memory.GetHistory())
	if c.preset != nil {
		b = b.Preset(*c.preset)
	}
	return b
}

// GetHistory returns the full conversation history.
func (c *Conversation) GetHistory() []Message {
	return c.memory.GetHistory()
}

// MessageCount returns the number of messages in the conversation.
func (c *Conversation) MessageCount() int {
	return c.memory.Len()
}
