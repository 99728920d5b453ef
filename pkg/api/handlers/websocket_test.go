package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatforge/chatforge/pkg/auth"
	"github.com/chatforge/chatforge/pkg/chat"
)

type wsAuthenticator struct {
	valid map[string]string
}

func (a *wsAuthenticator) Authenticate(token string) (string, error) {
	if userID, ok := a.valid[token]; ok {
		return userID, nil
	}
	return "", auth.ErrInvalidToken
}

func newWSServer(t *testing.T, maxConnections int) (*httptest.Server, *chat.Manager) {
	t.Helper()

	log := testLog(t)
	manager := chat.NewManager(maxConnections, 1<<20, log)
	service := chat.NewService(manager, nil, nil, false, log)
	handler := NewWebSocketHandler(service, &wsAuthenticator{
		valid: map[string]string{"tok-1": "u-1", "tok-2": "u-2"},
	}, log, WebSocketConfig{
		AllowedOrigins: []string{"*"},
		PingInterval:   time.Second,
		PongTimeout:    time.Second,
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	t.Cleanup(manager.Close)
	return server, manager
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketPingPong(t *testing.T) {
	server, _ := newWSServer(t, 10)

	header := http.Header{"Authorization": {"Bearer tok-1"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, "pong", frame["type"])
}

func TestWebSocketTokenInSubprotocol(t *testing.T) {
	server, _ := newWSServer(t, 10)

	dialer := websocket.Dialer{Subprotocols: []string{"tok-1"}}
	conn, _, err := dialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"status"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "status_response")
	assert.Contains(t, string(data), "u-1")
}

func TestWebSocketAuthFailureCloseCode(t *testing.T) {
	server, _ := newWSServer(t, 10)

	header := http.Header{"Authorization": {"Bearer bogus"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected close error, got %v", err)
	assert.Equal(t, chat.CloseAuthFailed, closeErr.Code)
}

func TestWebSocketMissingTokenCloseCode(t *testing.T) {
	server, _ := newWSServer(t, 10)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, chat.CloseAuthFailed, closeErr.Code)
}

func TestWebSocketCapacityCloseCode(t *testing.T) {
	server, _ := newWSServer(t, 1)

	header := http.Header{"Authorization": {"Bearer tok-1"}}
	first, _, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	require.NoError(t, err)
	defer first.Close()

	// Ensure the first session is registered before dialing again.
	require.NoError(t, first.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = first.ReadMessage()
	require.NoError(t, err)

	header2 := http.Header{"Authorization": {"Bearer tok-2"}}
	second, _, err := websocket.DefaultDialer.Dial(wsURL(server), header2)
	require.NoError(t, err)
	defer second.Close()

	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = second.ReadMessage()
	require.Error(t, err)

	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, chat.CloseCapacity, closeErr.Code)
}

func TestWebSocketUnknownTypeErrorFrame(t *testing.T) {
	server, _ := newWSServer(t, 10)

	header := http.Header{"Authorization": {"Bearer tok-1"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "UNSUPPORTED_MESSAGE_TYPE")
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	server, _ := newWSServer(t, 10)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
