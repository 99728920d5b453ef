package llm

import (
	"context"
	"fmt"

	"github.com/chatforge/chatforge/pkg/logger"
)

// MemoryBlockHeader prefixes the injected memory context.
const MemoryBlockHeader = "Relevant Context / Memories:"

// DefaultMemoryLimit bounds how many memories are injected per request.
const DefaultMemoryLimit = 3

// MemorySource renders a memory block for a query, scoped to a namespace.
// Satisfied by the memory adapter; nil disables injection.
type MemorySource interface {
	FormatBlock(ctx context.Context, query, namespace string, limit int, header string) (string, error)
}

// Options control one generation call.
type Options struct {
	// IncludeMemory prepends the caller's relevant memories to the
	// system prompt.
	IncludeMemory bool
	// MemoryQuery overrides the retrieval query; defaults to the user
	// input.
	MemoryQuery string
	// Namespace scopes the memory lookup, typically the user id or
	// "user:agent".
	Namespace string
}

// Service is the generation facade used by the chat layer. It composes
// the system prompt (optionally with a memory block) and delegates to the
// provider.
type Service struct {
	provider Provider
	memories MemorySource
	log      logger.Logger
}

// NewService wires the facade. memories may be nil when the memory
// subsystem is disabled.
func NewService(provider Provider, memories MemorySource, log logger.Logger) *Service {
	return &Service{provider: provider, memories: memories, log: log}
}

// Generate returns the full response for the user input.
func (s *Service) Generate(ctx context.Context, systemPrompt, userInput string, opts Options) (string, error) {
	prompt, err := s.preparePrompt(ctx, systemPrompt, userInput, opts)
	if err != nil {
		return "", err
	}
	return s.provider.Complete(ctx, Request{Messages: []Message{
		{Role: RoleSystem, Content: prompt},
		{Role: RoleUser, Content: userInput},
	}})
}

// GenerateStream streams the response for the user input.
func (s *Service) GenerateStream(ctx context.Context, systemPrompt, userInput string, opts Options) (<-chan Chunk, error) {
	prompt, err := s.preparePrompt(ctx, systemPrompt, userInput, opts)
	if err != nil {
		return nil, err
	}
	return s.provider.Stream(ctx, Request{Messages: []Message{
		{Role: RoleSystem, Content: prompt},
		{Role: RoleUser, Content: userInput},
	}})
}

// preparePrompt injects the memory block into the system prompt when
// requested. An empty block leaves the prompt untouched so the model
// never sees a header with nothing under it.
func (s *Service) preparePrompt(ctx context.Context, systemPrompt, userInput string, opts Options) (string, error) {
	if !opts.IncludeMemory {
		return systemPrompt, nil
	}
	if s.memories == nil {
		return "", fmt.Errorf("llm: memory requested but the memory subsystem is disabled")
	}

	query := opts.MemoryQuery
	if query == "" {
		query = userInput
	}

	block, err := s.memories.FormatBlock(ctx, query, opts.Namespace, DefaultMemoryLimit, MemoryBlockHeader)
	if err != nil {
		return "", err
	}
	if block == "" {
		return systemPrompt, nil
	}

	s.log.DebugContext(ctx, "memory block injected", "namespace", opts.Namespace, "bytes", len(block))
	return systemPrompt + "\n\n" + block, nil
}
