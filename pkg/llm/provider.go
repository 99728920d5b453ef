// Package llm provides the chat-model facade: a provider abstraction over
// OpenAI-compatible endpoints plus optional memory-context injection.
package llm

import (
	"context"
	"errors"
)

// ErrProvider wraps upstream model failures so callers can distinguish
// them from local errors.
var ErrProvider = errors.New("llm: provider request failed")

// Role values mirror the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a completion request. Zero values fall back to the provider's
// configured defaults.
type Request struct {
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
}

// Chunk is one streamed completion fragment. Err is set at most once, on
// the final chunk before the channel closes.
type Chunk struct {
	Text string
	Err  error
	Done bool
}

// Provider generates completions. Implementations must be safe for
// concurrent use.
type Provider interface {
	// Complete returns the full response text.
	Complete(ctx context.Context, req Request) (string, error)
	// Stream returns a channel of response fragments. The channel is
	// closed after the final chunk; cancelling ctx terminates the stream.
	Stream(ctx context.Context, req Request) (<-chan Chunk, error)
}
