package memory

import (
	"context"
	"strings"
)

// Message is one conversation entry to be persisted as a memory record.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Storable reports whether Store would keep the message: a role and
// non-blank content are both required.
func (m Message) Storable() bool {
	return m.Role != "" && strings.TrimSpace(m.Content) != ""
}

// Backend is the persistent vector store behind the adapter. Namespace is
// an opaque partition key: records written under one namespace are never
// visible to a search under another. Implementations must be safe for
// concurrent use; the adapter adds no serialization of its own.
type Backend interface {
	// Add persists the messages under the namespace.
	Add(ctx context.Context, messages []Message, namespace string) error
	// Search returns up to limit record contents ordered by descending
	// relevance. No records is an empty slice, not an error.
	Search(ctx context.Context, query, namespace string, limit int) ([]string, error)
}

// BackendFactory constructs the backend during adapter initialization.
// Exactly one backend is built per adapter regardless of how many
// goroutines race into Init.
type BackendFactory func(Settings) (Backend, error)
