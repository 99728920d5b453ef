package chat

import "time"

// Close codes beyond the RFC range, mirrored by clients.
const (
	CloseAuthFailed = 4401
	CloseCapacity   = 4002
)

// Content is the message body for echo and llm_stream requests.
type Content struct {
	Text string `json:"text"`
}

// Request is the unified incoming frame. Type selects the handler.
type Request struct {
	Type    string         `json:"type"`
	Message *Content       `json:"message,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	// AgentID optionally sub-partitions the user's memories per agent.
	AgentID string `json:"agent_id,omitempty"`
}

// Pong answers a ping.
type Pong struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse reports connection state for the asking user.
type StatusResponse struct {
	Type   string         `json:"type"`
	UserID string         `json:"user_id"`
	Data   map[string]any `json:"data"`
}

// TextResponse carries a plain text reply, used by echo.
type TextResponse struct {
	Type            string         `json:"type"`
	Content         string         `json:"content"`
	OriginalMessage string         `json:"original_message,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
}

// ErrorMessage is the typed error frame.
type ErrorMessage struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StreamChunk is one llm_stream fragment.
type StreamChunk struct {
	Type  string `json:"type"`
	Chunk string `json:"chunk"`
}

// StreamDone terminates an llm_stream exchange.
type StreamDone struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
}

func newErrorMessage(message, code string) *ErrorMessage {
	return &ErrorMessage{
		Type:      "error",
		Message:   message,
		ErrorCode: code,
		Timestamp: time.Now().UTC(),
	}
}
