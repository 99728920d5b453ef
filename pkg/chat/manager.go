// Package chat implements the WebSocket chat plane: a per-user/namespace
// connection manager and a typed-message dispatch service.
package chat

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/chatforge/chatforge/pkg/logger"
)

// DefaultNamespace is used when a client connects without naming one.
const DefaultNamespace = "chat"

// ErrCapacity indicates the connection cap is reached.
var ErrCapacity = errors.New("chat: connection limit reached")

// ErrMessageTooLarge indicates an outbound frame exceeds the size cap.
var ErrMessageTooLarge = errors.New("chat: message exceeds size limit")

// Session is one connected client. Outbound frames go through the send
// channel, drained by the connection's write pump. The mutex serializes
// Send against Close: the dispatch goroutine may still be streaming while
// the write pump tears the session down.
type Session struct {
	UserID    string
	Namespace string

	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewSession creates a session for an upgraded connection. conn may be nil
// in tests; the send channel still works.
func NewSession(userID, namespace string, conn *websocket.Conn, sendBuffer int) *Session {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Session{
		UserID:    userID,
		Namespace: namespace,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
}

// Send queues a frame without blocking; a full buffer or a closed session
// drops the frame and reports false so the caller can treat the client as
// gone.
func (s *Session) Send(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// Outbound exposes the frame channel for the write pump.
func (s *Session) Outbound() <-chan []byte {
	return s.send
}

// Conn returns the underlying connection, nil in tests.
func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

// Close closes the send channel and the connection. Idempotent, and safe
// against concurrent Send.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// Manager tracks sessions per user and namespace. A user may hold one
// connection per namespace; connecting again on the same namespace closes
// the older one.
type Manager struct {
	mu             sync.RWMutex
	sessions       map[string]map[string]*Session // user -> namespace -> session
	count          int
	maxConnections int
	maxMessageSize int64
	log            logger.Logger
}

// NewManager creates a connection manager.
func NewManager(maxConnections int, maxMessageSize int64, log logger.Logger) *Manager {
	if maxConnections <= 0 {
		maxConnections = 1000
	}
	if maxMessageSize <= 0 {
		maxMessageSize = 1 << 20
	}
	return &Manager{
		sessions:       make(map[string]map[string]*Session),
		maxConnections: maxConnections,
		maxMessageSize: maxMessageSize,
		log:            log,
	}
}

// MaxMessageSize is the inbound/outbound frame size cap.
func (m *Manager) MaxMessageSize() int64 {
	return m.maxMessageSize
}

// Add registers a session. Returns ErrCapacity at the connection cap; a
// duplicate user/namespace pair closes the previous session first.
func (m *Manager) Add(sess *Session) error {
	m.mu.Lock()

	userSessions, ok := m.sessions[sess.UserID]
	if !ok {
		userSessions = make(map[string]*Session)
		m.sessions[sess.UserID] = userSessions
	}

	old := userSessions[sess.Namespace]
	if old == nil && m.count >= m.maxConnections {
		m.mu.Unlock()
		return ErrCapacity
	}

	userSessions[sess.Namespace] = sess
	if old == nil {
		m.count++
	}
	m.mu.Unlock()

	if old != nil {
		m.log.Warn("duplicate namespace connection, closing older one",
			"user_id", sess.UserID, "namespace", sess.Namespace)
		old.Close()
	}
	return nil
}

// Remove unregisters and closes the session. A session already replaced
// by a newer one on the same namespace is left alone in the registry.
func (m *Manager) Remove(sess *Session) {
	m.mu.Lock()
	if userSessions, ok := m.sessions[sess.UserID]; ok {
		if userSessions[sess.Namespace] == sess {
			delete(userSessions, sess.Namespace)
			m.count--
			if len(userSessions) == 0 {
				delete(m.sessions, sess.UserID)
			}
		}
	}
	m.mu.Unlock()

	sess.Close()
}

// Get returns the session for a user/namespace, or nil.
func (m *Manager) Get(userID, namespace string) *Session {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[userID][namespace]
}

// Send delivers a frame to a specific user/namespace. Reports false when
// the target is not connected or stalled.
func (m *Manager) Send(userID, namespace string, payload []byte) (bool, error) {
	if int64(len(payload)) > m.maxMessageSize {
		return false, ErrMessageTooLarge
	}

	sess := m.Get(userID, namespace)
	if sess == nil {
		return false, nil
	}
	if !sess.Send(payload) {
		m.log.Warn("dropping frame for stalled client", "user_id", userID, "namespace", namespace)
		m.Remove(sess)
		return false, nil
	}
	return true, nil
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// CanAccept reports whether there is room for one more session.
func (m *Manager) CanAccept() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count < m.maxConnections
}

// Close closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, userSessions := range m.sessions {
		for namespace, sess := range userSessions {
			sess.Close()
			delete(userSessions, namespace)
		}
		delete(m.sessions, userID)
	}
	m.count = 0
}
