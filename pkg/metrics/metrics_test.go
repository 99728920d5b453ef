package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRecordsAndExposes(t *testing.T) {
	m := NewManager(DefaultConfig())
	require.True(t, m.Enabled())

	m.RecordAuthAttempt("login", "success")
	m.RecordAuthAttempt("login", "failure")
	m.RecordSMSCodeSent("register")
	m.IncChatConnections()
	m.RecordChatMessage("llm_stream")
	m.RecordLLMRequest("success", 2*time.Second)
	m.RecordLLMStreamChunk()
	m.RecordMemoryOperation("search", "success", 50*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/auth/login", "200", 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `auth_attempts_total{operation="login",outcome="success"} 1`)
	assert.Contains(t, body, `sms_codes_sent_total{scene="register"} 1`)
	assert.Contains(t, body, "chat_active_connections 1")
	assert.Contains(t, body, `chat_messages_total{type="llm_stream"} 1`)
	assert.Contains(t, body, `llm_requests_total{outcome="success"} 1`)
	assert.Contains(t, body, "llm_stream_chunks_total 1")
	assert.Contains(t, body, `memory_operations_total{op="search",outcome="success"} 1`)
	assert.Contains(t, body, `http_requests_total{method="POST",path="/api/v1/auth/login",status="200"} 1`)
}

func TestDisabledManagerIsNoOp(t *testing.T) {
	m := NoOpManager()
	assert.False(t, m.Enabled())

	// Must not panic with nil collectors.
	m.RecordAuthAttempt("login", "success")
	m.IncChatConnections()
	m.DecChatConnections()
	m.RecordLLMRequest("failure", time.Second)
	m.RecordMemoryOperation("store", "failure", time.Millisecond)
	m.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)
	m.IncActiveConnections()
	m.DecActiveConnections()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatConnectionGauge(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.IncChatConnections()
	m.IncChatConnections()
	m.DecChatConnections()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "chat_active_connections 1")
}
