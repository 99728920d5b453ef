package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// ChromemBackend stores memories in an embedded chromem-go vector database
// persisted under a directory path. Each namespace maps to its own
// collection, which gives record isolation without any filtering logic
// here. Embeddings come from an OpenAI-compatible endpoint.
type ChromemBackend struct {
	db    *chromem.DB
	embed chromem.EmbeddingFunc

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

// NewChromemBackend opens (or creates) the persistent database at
// settings.StorePath. The directory layout is owned entirely by chromem.
func NewChromemBackend(settings Settings) (Backend, error) {
	db, err := chromem.NewPersistentDB(settings.StorePath, settings.Compress)
	if err != nil {
		return nil, fmt.Errorf("open vector store at %s: %w", settings.StorePath, err)
	}

	embed := chromem.NewEmbeddingFuncOpenAICompat(
		settings.EmbeddingBaseURL,
		settings.EmbeddingAPIKey,
		settings.EmbeddingModel,
		nil,
	)

	return &ChromemBackend{
		db:          db,
		embed:       embed,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func (b *ChromemBackend) collection(namespace string) (*chromem.Collection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if col, ok := b.collections[namespace]; ok {
		return col, nil
	}

	col, err := b.db.GetOrCreateCollection("ns_"+namespace, nil, b.embed)
	if err != nil {
		return nil, fmt.Errorf("collection for namespace %s: %w", namespace, err)
	}
	b.collections[namespace] = col
	return col, nil
}

// Add persists one document per message.
func (b *ChromemBackend) Add(ctx context.Context, messages []Message, namespace string) error {
	col, err := b.collection(namespace)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, 0, len(messages))
	for _, msg := range messages {
		docs = append(docs, chromem.Document{
			ID:      uuid.New().String(),
			Content: msg.Content,
			Metadata: map[string]string{
				"role":      msg.Role,
				"namespace": namespace,
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Search embeds the query and returns the closest record contents. chromem
// rejects a result count larger than the collection, so the limit is
// clamped to the current document count.
func (b *ChromemBackend) Search(ctx context.Context, query, namespace string, limit int) ([]string, error) {
	col, err := b.collection(namespace)
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := col.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	contents := make([]string, 0, len(results))
	for _, res := range results {
		contents = append(contents, res.Content)
	}
	return contents, nil
}
