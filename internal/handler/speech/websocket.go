package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/park-concierge/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/park-concierge/backend/internal/service/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/service/concierge"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Asker answers one question of a session.
type Asker interface {
	Ask(ctx context.Context, sessionID, question string, withAudio bool) (concierge.Reply, error)
}

// SessionLookup checks that a session exists before upgrading.
type SessionLookup interface {
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
}

// WebSocketHandler serves the question channel of one session per
// connection. Questions are handled in arrival order, one at a time.
type WebSocketHandler struct {
	assistant   Asker
	sessions    SessionLookup
	audioFormat string
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(assistant Asker, sessions SessionLookup, audioFormat string) *WebSocketHandler {
	return &WebSocketHandler{
		assistant:   assistant,
		sessions:    sessions,
		audioFormat: audioFormat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// QuestionMessage is the payload of a "question" frame.
type QuestionMessage struct {
	Text  string `json:"text"`
	Audio bool   `json:"audio"`
}

// AnswerMessage is the payload of an "answer" frame.
type AnswerMessage struct {
	MessageID string      `json:"messageId"`
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	Source    chat.Source `json:"source"`
	Badge     string      `json:"badge"`
	Keyword   string      `json:"keyword,omitempty"`
}

// AudioMessage is the payload of an "audio" frame.
type AudioMessage struct {
	MessageID string `json:"messageId"`
	AudioData string `json:"audioData,omitempty"`
	Format    string `json:"format,omitempty"`
	Error     string `json:"error,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.sessions.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.send(conn, sessionID, "connected", map[string]any{"sessionId": sessionID})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(conn, "session mismatch")
			continue
		}

		h.handleMessage(ctx, conn, sessionID, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, sessionID string, msg *inboundMessage) {
	switch msg.Type {
	case "question":
		h.handleQuestion(ctx, conn, sessionID, msg.Data)
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleQuestion(ctx context.Context, conn *websocket.Conn, sessionID string, raw json.RawMessage) {
	var question QuestionMessage
	if err := json.Unmarshal(raw, &question); err != nil {
		h.sendError(conn, "invalid question payload")
		return
	}

	reply, err := h.assistant.Ask(ctx, sessionID, question.Text, question.Audio)
	if err != nil {
		switch {
		case errors.Is(err, concierge.ErrEmptyQuestion):
			h.sendError(conn, "question is required")
		case errors.Is(err, chatservice.ErrSessionNotFound):
			h.sendError(conn, "session not found")
		default:
			log.Printf("[websocket] ask failed session=%s: %v", sessionID, err)
			h.sendError(conn, "internal error")
		}
		return
	}

	h.send(conn, sessionID, "answer", AnswerMessage{
		MessageID: reply.Answer.ID,
		Question:  reply.Question.Content,
		Answer:    reply.Answer.Content,
		Source:    reply.Answer.Source,
		Badge:     reply.Answer.Source.Badge(),
		Keyword:   reply.Keyword,
	})

	if !question.Audio {
		return
	}
	audio := AudioMessage{MessageID: reply.Answer.ID}
	switch {
	case len(reply.Audio) > 0:
		audio.AudioData = base64.StdEncoding.EncodeToString(reply.Audio)
		audio.Format = h.audioFormat
	case reply.AudioError != "":
		audio.Error = reply.AudioError
	default:
		audio.Error = "speech synthesis is disabled"
	}
	h.send(conn, sessionID, "audio", audio)
}

func (h *WebSocketHandler) send(conn *websocket.Conn, sessionID, msgType string, data interface{}) {
	msg := outgoingMessage{
		Type:      msgType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msgType, err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
