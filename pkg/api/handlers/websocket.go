package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chatforge/chatforge/pkg/api/middleware"
	"github.com/chatforge/chatforge/pkg/chat"
	"github.com/chatforge/chatforge/pkg/logger"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultSendBuffer   = 32
)

// WebSocketConfig configures websocket handler behavior.
type WebSocketConfig struct {
	AllowedOrigins []string
	PingInterval   time.Duration
	PongTimeout    time.Duration
	SendBuffer     int
}

// ConnectionMetrics tracks the active connection gauge.
type ConnectionMetrics interface {
	IncChatConnections()
	DecChatConnections()
}

// WebSocketHandler upgrades /ws connections into chat sessions. The
// handshake must carry an access token in the Authorization header, the
// X-Auth-Token header, or the first Sec-WebSocket-Protocol value.
type WebSocketHandler struct {
	log          logger.Logger
	chat         *chat.Service
	authn        middleware.Authenticator
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	pongTimeout  time.Duration
	writeTimeout time.Duration
	sendBuffer   int
	metrics      ConnectionMetrics
}

// SetMetrics attaches a connection gauge. Optional.
func (h *WebSocketHandler) SetMetrics(m ConnectionMetrics) {
	h.metrics = m
}

// NewWebSocketHandler creates a websocket handler.
func NewWebSocketHandler(chatService *chat.Service, authn middleware.Authenticator, log logger.Logger, cfg WebSocketConfig) *WebSocketHandler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaultPongTimeout
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}

	handler := &WebSocketHandler{
		log:          log,
		chat:         chatService,
		authn:        authn,
		pingInterval: cfg.PingInterval,
		pongTimeout:  cfg.PongTimeout,
		writeTimeout: defaultWriteTimeout,
		sendBuffer:   cfg.SendBuffer,
	}

	allowedOrigins := append([]string(nil), cfg.AllowedOrigins...)
	handler.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return isWebSocketOriginAllowed(r, allowedOrigins)
		},
	}

	return handler
}

// ServeHTTP upgrades HTTP to websocket and starts the session loops.
// Authentication failures close with code 4401 after the upgrade so
// browser clients can read the close reason; capacity exhaustion closes
// with 4002.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusBadRequest)
		return
	}

	var responseHeader http.Header
	token := middleware.ExtractToken(r)
	if token == "" {
		if protocols := websocket.Subprotocols(r); len(protocols) > 0 {
			token = protocols[0]
			responseHeader = http.Header{"Sec-Websocket-Protocol": {protocols[0]}}
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	userID, err := h.authn.Authenticate(token)
	if err != nil || token == "" {
		h.closeWith(conn, chat.CloseAuthFailed, "authentication failed")
		return
	}

	manager := h.chat.Manager()
	if !manager.CanAccept() {
		h.closeWith(conn, chat.CloseCapacity, "connection limit reached")
		return
	}

	namespace := strings.TrimSpace(r.URL.Query().Get("namespace"))
	sess := chat.NewSession(userID, namespace, conn, h.sendBuffer)
	if err := manager.Add(sess); err != nil {
		h.closeWith(conn, chat.CloseCapacity, "connection limit reached")
		return
	}

	h.log.Info("websocket connected", "user_id", userID, "namespace", sess.Namespace)
	if h.metrics != nil {
		h.metrics.IncChatConnections()
		defer h.metrics.DecChatConnections()
	}

	go h.writePump(sess)
	h.readPump(r, sess)
}

func (h *WebSocketHandler) closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(h.writeTimeout),
	)
	_ = conn.Close()
}

func (h *WebSocketHandler) readPump(r *http.Request, sess *chat.Session) {
	manager := h.chat.Manager()
	defer manager.Remove(sess)

	conn := sess.Conn()
	readDeadline := h.pingInterval + h.pongTimeout
	conn.SetReadLimit(manager.MaxMessageSize())
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", "user_id", sess.UserID, "error", err)
			}
			return
		}
		h.chat.HandleMessage(r.Context(), sess, data)
	}
}

func (h *WebSocketHandler) writePump(sess *chat.Session) {
	conn := sess.Conn()
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		h.chat.Manager().Remove(sess)
	}()

	for {
		select {
		case message, ok := <-sess.Outbound():
			if !ok {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(h.writeTimeout),
				)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
		}
	}
}

func isWebSocketOriginAllowed(r *http.Request, allowedOrigins []string) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}

	for _, allowed := range allowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(originURL.Host, r.Host)
}
