package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/chatforge/chatforge/pkg/llm"
	"github.com/chatforge/chatforge/pkg/logger"
	"github.com/chatforge/chatforge/pkg/memory"
)

// DefaultSystemPrompt seeds llm_stream conversations.
const DefaultSystemPrompt = "You are a helpful assistant."

// Handler processes one typed message. A non-nil result is marshalled and
// sent back on the session; nil means the handler already wrote whatever
// it wanted (streaming handlers).
type Handler func(ctx context.Context, sess *Session, req *Request) (any, error)

// MemoryWriter persists chat exchanges. Satisfied by the memory adapter;
// nil disables persistence.
type MemoryWriter interface {
	Store(ctx context.Context, messages []memory.Message, namespace string) error
}

// MetricsRecorder counts processed messages and model calls.
type MetricsRecorder interface {
	RecordChatMessage(messageType string)
	RecordLLMRequest(outcome string, duration time.Duration)
	RecordLLMStreamChunk()
}

// Service dispatches incoming frames through a handler registry. Built-in
// types: ping, status, echo, llm_stream.
type Service struct {
	manager  *Manager
	llm      *llm.Service
	memories MemoryWriter
	log      logger.Logger

	// injectMemory turns on memory-block injection for llm_stream.
	injectMemory bool
	handlers     map[string]Handler
	metrics      MetricsRecorder
}

// SetMetrics attaches a metrics recorder. Optional.
func (s *Service) SetMetrics(m MetricsRecorder) {
	s.metrics = m
}

// NewService wires the dispatch service. llmService may be nil (llm_stream
// then reports an error frame); memories may be nil.
func NewService(manager *Manager, llmService *llm.Service, memories MemoryWriter, injectMemory bool, log logger.Logger) *Service {
	s := &Service{
		manager:      manager,
		llm:          llmService,
		memories:     memories,
		injectMemory: injectMemory,
		log:          log,
		handlers:     make(map[string]Handler),
	}
	s.RegisterHandler("ping", s.handlePing)
	s.RegisterHandler("status", s.handleStatus)
	s.RegisterHandler("echo", s.handleEcho)
	s.RegisterHandler("llm_stream", s.handleLLMStream)
	return s
}

// RegisterHandler binds a message type to a handler, replacing any
// previous binding.
func (s *Service) RegisterHandler(messageType string, handler Handler) {
	s.handlers[messageType] = handler
}

// Manager exposes the connection manager.
func (s *Service) Manager() *Manager {
	return s.manager
}

// HandleMessage parses and dispatches one inbound frame. Malformed JSON
// and unknown types produce typed error frames rather than closing the
// connection.
func (s *Service) HandleMessage(ctx context.Context, sess *Session, raw []byte) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.sendError(sess, newErrorMessage("invalid message format", "MESSAGE_ERROR"))
		return
	}

	messageType := strings.TrimSpace(req.Type)
	handler, ok := s.handlers[messageType]
	if !ok {
		s.sendError(sess, newErrorMessage("unsupported message type: "+messageType, "UNSUPPORTED_MESSAGE_TYPE"))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordChatMessage(messageType)
	}

	result, err := handler(ctx, sess, &req)
	if err != nil {
		s.log.WarnContext(ctx, "handler failed",
			"type", messageType, "user_id", sess.UserID, "error", err)
		s.sendError(sess, newErrorMessage(err.Error(), "MESSAGE_ERROR"))
		return
	}
	if result != nil {
		s.reply(sess, result)
	}
}

func (s *Service) reply(sess *Session, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("marshal reply failed", "error", err)
		return
	}
	if int64(len(data)) > s.manager.MaxMessageSize() {
		s.sendError(sess, newErrorMessage("response exceeds message size limit", "MESSAGE_ERROR"))
		return
	}
	sess.Send(data)
}

func (s *Service) sendError(sess *Session, msg *ErrorMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	sess.Send(data)
}

func (s *Service) handlePing(_ context.Context, _ *Session, _ *Request) (any, error) {
	return &Pong{Type: "pong", Timestamp: time.Now().UTC()}, nil
}

func (s *Service) handleStatus(_ context.Context, sess *Session, _ *Request) (any, error) {
	return &StatusResponse{
		Type:   "status_response",
		UserID: sess.UserID,
		Data: map[string]any{
			"namespace":          sess.Namespace,
			"active_connections": s.manager.Count(),
		},
	}, nil
}

func (s *Service) handleEcho(_ context.Context, sess *Session, req *Request) (any, error) {
	var text string
	if req.Message != nil {
		text = req.Message.Text
	}
	return &TextResponse{
		Type:            "text_response",
		Content:         text,
		OriginalMessage: text,
		Data: map[string]any{
			"echo":        true,
			"payload":     req.Payload,
			"received_at": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// handleLLMStream streams a model response back as llm_stream frames and
// terminates with llm_stream_done. A successful exchange is persisted to
// the user's memory namespace.
func (s *Service) handleLLMStream(ctx context.Context, sess *Session, req *Request) (any, error) {
	if s.llm == nil {
		return nil, &serviceError{"llm is not configured"}
	}
	if req.Message == nil || strings.TrimSpace(req.Message.Text) == "" {
		return nil, &serviceError{"llm_stream requires text content"}
	}
	input := req.Message.Text

	namespace := sess.UserID
	if req.AgentID != "" {
		namespace = sess.UserID + ":" + req.AgentID
	}

	started := time.Now()
	chunks, err := s.llm.GenerateStream(ctx, DefaultSystemPrompt, input, llm.Options{
		IncludeMemory: s.injectMemory,
		Namespace:     namespace,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordLLMRequest("failure", time.Since(started))
		}
		return nil, err
	}

	var response strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			s.sendError(sess, newErrorMessage(chunk.Err.Error(), "LLM_SERVICE_ERROR"))
			s.reply(sess, &StreamDone{Type: "llm_stream_done", OK: false})
			if s.metrics != nil {
				s.metrics.RecordLLMRequest("failure", time.Since(started))
			}
			return nil, nil
		}
		if chunk.Text != "" {
			response.WriteString(chunk.Text)
			s.reply(sess, &StreamChunk{Type: "llm_stream", Chunk: chunk.Text})
			if s.metrics != nil {
				s.metrics.RecordLLMStreamChunk()
			}
		}
	}
	s.reply(sess, &StreamDone{Type: "llm_stream_done", OK: true})
	if s.metrics != nil {
		s.metrics.RecordLLMRequest("success", time.Since(started))
	}

	if s.memories != nil {
		err := s.memories.Store(ctx, []memory.Message{
			{Role: "user", Content: input},
			{Role: "assistant", Content: response.String()},
		}, namespace)
		if err != nil {
			s.log.WarnContext(ctx, "failed to persist chat exchange",
				"user_id", sess.UserID, "namespace", namespace, "error", err)
		}
	}
	return nil, nil
}

type serviceError struct {
	msg string
}

func (e *serviceError) Error() string {
	return e.msg
}
