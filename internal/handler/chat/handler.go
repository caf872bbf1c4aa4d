package chat

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/park-concierge/backend/internal/model/chat"
	chatService "github.com/zhouzirui/park-concierge/backend/internal/service/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/service/concierge"
	"github.com/zhouzirui/park-concierge/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc     *chatService.Service
	assistant   *concierge.Assistant
	audioFormat string
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, assistant *concierge.Assistant, audioFormat string) *Handler {
	return &Handler{
		chatSvc:     chatSvc,
		assistant:   assistant,
		audioFormat: audioFormat,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Delete("/", h.handleEndSession)
		sr.Get("/messages", h.handleTranscript)
		sr.Post("/ask", h.handleAsk)
	})
}

type askRequest struct {
	Question string `json:"question"`
	Audio    bool   `json:"audio"`
}

type askResponse struct {
	Answer      string      `json:"answer"`
	Source      chat.Source `json:"source"`
	Badge       string      `json:"badge"`
	Keyword     string      `json:"keyword,omitempty"`
	MessageID   string      `json:"messageId"`
	Audio       []byte      `json:"audio,omitempty"`
	AudioFormat string      `json:"audioFormat,omitempty"`
	AudioError  string      `json:"audioError,omitempty"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.assistant.EndSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"messages":  messages,
	})
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload askRequest
	if err := utils.DecodeJSON(r.Body, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.assistant.Ask(r.Context(), sessionID, payload.Question, payload.Audio)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := askResponse{
		Answer:     reply.Answer.Content,
		Source:     reply.Answer.Source,
		Badge:      reply.Answer.Source.Badge(),
		Keyword:    reply.Keyword,
		MessageID:  reply.Answer.ID,
		Audio:      reply.Audio,
		AudioError: reply.AudioError,
	}
	if len(reply.Audio) > 0 {
		resp.AudioFormat = h.audioFormat
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, concierge.ErrEmptyQuestion):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrInvalidTurn):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[chat] request failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
