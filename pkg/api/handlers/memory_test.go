package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatforge/chatforge/pkg/memory"
)

// stubBackend stores message contents per namespace and echoes them back
// for any query.
type stubBackend struct {
	records map[string][]string
}

func (b *stubBackend) Add(_ context.Context, messages []memory.Message, namespace string) error {
	for _, msg := range messages {
		b.records[namespace] = append(b.records[namespace], msg.Content)
	}
	return nil
}

func (b *stubBackend) Search(_ context.Context, _ string, namespace string, limit int) ([]string, error) {
	results := b.records[namespace]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func newMemoryEnv(t *testing.T) (*MemoryHandler, *stubBackend) {
	t.Helper()

	backend := &stubBackend{records: make(map[string][]string)}
	adapter := memory.NewAdapter(memory.Settings{
		EmbeddingAPIKey:  "test-key",
		EmbeddingModel:   "test-model",
		DefaultNamespace: "default",
	}, func(memory.Settings) (memory.Backend, error) {
		return backend, nil
	})
	require.NoError(t, adapter.Init())

	return NewMemoryHandler(adapter, testLog(t)), backend
}

func memoryRequest(method, path string, namespace string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("namespace", namespace)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestStoreMemory(t *testing.T) {
	h, backend := newMemoryEnv(t)

	payload := []byte(`{"messages":[{"role":"user","content":"likes tea"},{"role":"assistant","content":"noted"}]}`)
	rec := httptest.NewRecorder()
	h.StoreMemory(rec, memoryRequest(http.MethodPost, "/api/v1/memory/u-1", "u-1", payload))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stored":2`)
	assert.Equal(t, []string{"likes tea", "noted"}, backend.records["u-1"])
}

func TestStoreMemoryCountsKeptMessagesOnly(t *testing.T) {
	h, backend := newMemoryEnv(t)

	payload := []byte(`{"messages":[{"role":"user","content":"likes tea"},{"role":"user","content":"   "},{"role":"","content":"orphan"}]}`)
	rec := httptest.NewRecorder()
	h.StoreMemory(rec, memoryRequest(http.MethodPost, "/api/v1/memory/u-1", "u-1", payload))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stored":1`)
	assert.Equal(t, []string{"likes tea"}, backend.records["u-1"])
}

func TestStoreMemoryEmptyBody(t *testing.T) {
	h, _ := newMemoryEnv(t)

	rec := httptest.NewRecorder()
	h.StoreMemory(rec, memoryRequest(http.MethodPost, "/api/v1/memory/u-1", "u-1", []byte(`{"messages":[]}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMemory(t *testing.T) {
	h, backend := newMemoryEnv(t)
	backend.records["u-1"] = []string{"likes tea", "lives in Berlin", "has a cat"}

	rec := httptest.NewRecorder()
	h.SearchMemory(rec, memoryRequest(http.MethodGet, "/api/v1/memory/u-1?query=tea&limit=2", "u-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body searchMemoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"likes tea", "lives in Berlin"}, body.Results)
}

func TestSearchMemoryMissingQuery(t *testing.T) {
	h, _ := newMemoryEnv(t)

	rec := httptest.NewRecorder()
	h.SearchMemory(rec, memoryRequest(http.MethodGet, "/api/v1/memory/u-1", "u-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMemoryInvalidLimit(t *testing.T) {
	h, _ := newMemoryEnv(t)

	rec := httptest.NewRecorder()
	h.SearchMemory(rec, memoryRequest(http.MethodGet, "/api/v1/memory/u-1?query=tea&limit=0", "u-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestSearchMemoryEmptyNamespaceUsesDefault(t *testing.T) {
	h, backend := newMemoryEnv(t)
	backend.records["default"] = []string{"fact"}

	rec := httptest.NewRecorder()
	h.SearchMemory(rec, memoryRequest(http.MethodGet, "/api/v1/memory/?query=fact", "", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fact")
}

func TestPreviewBlock(t *testing.T) {
	h, backend := newMemoryEnv(t)
	backend.records["u-1"] = []string{"likes tea"}

	rec := httptest.NewRecorder()
	h.PreviewBlock(rec, memoryRequest(http.MethodGet, "/api/v1/memory/u-1/block?query=tea", "u-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, memory.DefaultBlockHeader+"\n- likes tea", body["block"])
}

func TestPreviewBlockNoMatches(t *testing.T) {
	h, _ := newMemoryEnv(t)

	rec := httptest.NewRecorder()
	h.PreviewBlock(rec, memoryRequest(http.MethodGet, "/api/v1/memory/u-1/block?query=anything", "u-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"block":""`)
}
