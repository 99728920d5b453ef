package memory

import (
	"context"
	"strings"
	"sync"
)

// DefaultBlockHeader prefixes the rendered memory block when the caller
// does not supply a header of its own.
const DefaultBlockHeader = "Relevant memories:"

// DefaultStorePath is used when no storage path is configured.
const DefaultStorePath = "./data/memories"

// Settings carries everything the adapter needs at construction time.
// Required fields are validated by Init, which enumerates every missing
// one in a single error rather than failing on the first.
type Settings struct {
	StorePath        string
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string
	DefaultNamespace string
	RulesPath        string
	Compress         bool
}

func (s Settings) missing() []string {
	var missing []string
	if s.EmbeddingAPIKey == "" {
		missing = append(missing, "embedding_api_key")
	}
	if s.EmbeddingModel == "" {
		missing = append(missing, "embedding_model")
	}
	if s.DefaultNamespace == "" {
		missing = append(missing, "default_namespace")
	}
	return missing
}

// Adapter is the single process-wide handle onto the vector-memory
// backend. It is constructed during startup and passed by reference to
// every consumer; there is no package-level instance.
//
// Init must succeed before Store/Fetch/FormatBlock are used. Steady-state
// operations take no lock of their own: the backend is shared and must be
// safe for concurrent use. Concurrent calls against the same namespace
// race at the backend's discretion; the adapter imposes no per-namespace
// serialization and performs no retries.
type Adapter struct {
	settings Settings
	factory  BackendFactory

	mu          sync.Mutex
	initialized bool
	backend     Backend
	rules       *RuleSet
}

// NewAdapter creates an uninitialized adapter. factory defaults to the
// chromem backend when nil.
func NewAdapter(settings Settings, factory BackendFactory) *Adapter {
	if factory == nil {
		factory = NewChromemBackend
	}
	if settings.StorePath == "" {
		settings.StorePath = DefaultStorePath
	}
	return &Adapter{settings: settings, factory: factory}
}

// Init validates settings, loads the normalization rules, and constructs
// the backend. Idempotent: once a call has succeeded, later calls return
// nil without touching the factory. Safe to invoke from multiple
// goroutines concurrently; at most one backend is ever constructed.
func (a *Adapter) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}

	if missing := a.settings.missing(); len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}

	rules, err := LoadRules(a.settings.RulesPath)
	if err != nil {
		return err
	}

	backend, err := a.factory(a.settings)
	if err != nil {
		return &ConfigError{Reason: "backend construction failed", Err: err}
	}

	a.rules = rules
	a.backend = backend
	a.initialized = true
	return nil
}

func (a *Adapter) state() (Backend, *RuleSet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, nil, ErrNotInitialized
	}
	return a.backend, a.rules, nil
}

// resolveNamespace substitutes the configured default only for an empty
// namespace. Multi-user callers must always pass an explicit one; relying
// on the default there is a caller error this layer does not detect.
func (a *Adapter) resolveNamespace(namespace string) string {
	if namespace == "" {
		return a.settings.DefaultNamespace
	}
	return namespace
}

// Store persists messages under the namespace. Entries with empty role or
// content are dropped first; if nothing remains the call is a no-op, not
// an error. Backend failures surface as *BackendError.
func (a *Adapter) Store(ctx context.Context, messages []Message, namespace string) error {
	backend, _, err := a.state()
	if err != nil {
		return err
	}

	kept := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if !msg.Storable() {
			continue
		}
		kept = append(kept, msg)
	}
	if len(kept) == 0 {
		return nil
	}

	if err := backend.Add(ctx, kept, a.resolveNamespace(namespace)); err != nil {
		return &BackendError{Op: "store", Err: err}
	}
	return nil
}

// Fetch normalizes the query and returns up to limit record contents in
// descending backend relevance. A namespace with no records yields an
// empty slice and nil error; backend failures are never reported as empty
// results. overrides is the per-call literal-replacement overlay.
func (a *Adapter) Fetch(ctx context.Context, query, namespace string, limit int, overrides map[string]string) ([]string, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	backend, rules, err := a.state()
	if err != nil {
		return nil, err
	}

	normalized := rules.Normalize(query, overrides)
	if normalized == "" {
		return nil, nil
	}

	results, err := backend.Search(ctx, normalized, a.resolveNamespace(namespace), limit)
	if err != nil {
		return nil, &BackendError{Op: "search", Err: err}
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// FormatBlock renders fetched memories as a prompt block: the header, then
// one "- content" line per record, newline-joined. An empty fetch result
// yields an empty string so callers can omit the block entirely instead of
// emitting a header with nothing under it.
func (a *Adapter) FormatBlock(ctx context.Context, query, namespace string, limit int, header string) (string, error) {
	results, err := a.Fetch(ctx, query, namespace, limit, nil)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	if header == "" {
		header = DefaultBlockHeader
	}

	var sb strings.Builder
	sb.WriteString(header)
	for _, content := range results {
		sb.WriteString("\n- ")
		sb.WriteString(content)
	}
	return sb.String(), nil
}
