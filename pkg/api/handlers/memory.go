package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chatforge/chatforge/pkg/api/response"
	"github.com/chatforge/chatforge/pkg/logger"
	"github.com/chatforge/chatforge/pkg/memory"
)

// MemoryHandler exposes the memory adapter for direct inspection and
// seeding. The chat plane writes memories on its own; these endpoints
// exist for tooling and debugging.
type MemoryHandler struct {
	adapter *memory.Adapter
	logger  logger.Logger
	metrics MemoryMetrics
}

// MemoryMetrics tracks adapter operation counts and latency.
type MemoryMetrics interface {
	RecordMemoryOperation(op, outcome string, duration time.Duration)
}

// NewMemoryHandler creates a new memory handler.
func NewMemoryHandler(adapter *memory.Adapter, log logger.Logger) *MemoryHandler {
	return &MemoryHandler{
		adapter: adapter,
		logger:  log,
	}
}

// SetMetrics attaches a metrics recorder. Optional.
func (h *MemoryHandler) SetMetrics(m MemoryMetrics) {
	h.metrics = m
}

func (h *MemoryHandler) record(op string, err error, started time.Time) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	h.metrics.RecordMemoryOperation(op, outcome, time.Since(started))
}

type storeMemoryRequest struct {
	Messages []memory.Message `json:"messages"`
}

type storeMemoryResponse struct {
	Stored int `json:"stored"`
}

type searchMemoryResponse struct {
	Results []string `json:"results"`
}

// StoreMemory handles POST /api/v1/memory/{namespace}
// @Summary Store chat messages as memories
// @Tags memory
// @Accept json
// @Produce json
// @Param namespace path string true "Memory namespace"
// @Param request body storeMemoryRequest true "Messages to store"
// @Success 201 {object} storeMemoryResponse "Messages stored"
// @Failure 400 {object} response.ErrorResponse "Invalid request body"
// @Failure 502 {object} response.ErrorResponse "Vector store failure"
// @Security BearerAuth
// @Router /api/v1/memory/{namespace} [post]
func (h *MemoryHandler) StoreMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	namespace := chi.URLParam(r, "namespace")

	var req storeMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}
	if len(req.Messages) == 0 {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, "At least one message is required", getRequestID(ctx))
		return
	}

	started := time.Now()
	err := h.adapter.Store(ctx, req.Messages, namespace)
	h.record("store", err, started)
	if err != nil {
		h.logger.ErrorContext(ctx, "memory store failed", "namespace", namespace, "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	// Report what the adapter actually kept, not the raw request count.
	stored := 0
	for _, msg := range req.Messages {
		if msg.Storable() {
			stored++
		}
	}
	response.JSON(w, http.StatusCreated, storeMemoryResponse{Stored: stored})
}

// SearchMemory handles GET /api/v1/memory/{namespace}
// @Summary Search memories
// @Description Retrieve memories relevant to a query; the query is normalized before the vector search
// @Tags memory
// @Produce json
// @Param namespace path string true "Memory namespace"
// @Param query query string true "Search query"
// @Param limit query int false "Maximum results" default(5)
// @Success 200 {object} searchMemoryResponse "Matching memories"
// @Failure 400 {object} response.ErrorResponse "Missing query or invalid limit"
// @Security BearerAuth
// @Router /api/v1/memory/{namespace} [get]
func (h *MemoryHandler) SearchMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	namespace := chi.URLParam(r, "namespace")

	query := r.URL.Query().Get("query")
	if query == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, "Query parameter is required", getRequestID(ctx))
		return
	}

	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, "Limit must be an integer", getRequestID(ctx))
			return
		}
		limit = n
	}

	started := time.Now()
	results, err := h.adapter.Fetch(ctx, query, namespace, limit, nil)
	h.record("search", err, started)
	if err != nil {
		h.logger.ErrorContext(ctx, "memory search failed", "namespace", namespace, "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}
	if results == nil {
		results = []string{}
	}

	response.JSON(w, http.StatusOK, searchMemoryResponse{Results: results})
}

// PreviewBlock handles GET /api/v1/memory/{namespace}/block
// @Summary Preview the prompt memory block
// @Description Render the formatted block exactly as it would be injected into a system prompt
// @Tags memory
// @Produce json
// @Param namespace path string true "Memory namespace"
// @Param query query string true "Search query"
// @Param limit query int false "Maximum results" default(3)
// @Success 200 {object} map[string]string "Formatted block, empty when nothing matched"
// @Security BearerAuth
// @Router /api/v1/memory/{namespace}/block [get]
func (h *MemoryHandler) PreviewBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	namespace := chi.URLParam(r, "namespace")

	query := r.URL.Query().Get("query")
	if query == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, "Query parameter is required", getRequestID(ctx))
		return
	}

	limit := 3
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	block, err := h.adapter.FormatBlock(ctx, query, namespace, limit, r.URL.Query().Get("header"))
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"block": block})
}
