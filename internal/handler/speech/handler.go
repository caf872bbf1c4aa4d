package speech

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/park-concierge/backend/internal/model/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/model/speech"
	chatservice "github.com/zhouzirui/park-concierge/backend/internal/service/chat"
	"github.com/zhouzirui/park-concierge/backend/pkg/utils"
)

// SpeechService 抽象语音业务，便于测试与替换实现
type SpeechService interface {
	SynthesizeToBuffer(ctx context.Context, sessionID, text string) (*speech.TTSResponse, error)
}

// TranscriptReader gives access to a session's latest answer.
type TranscriptReader interface {
	LastAssistant(ctx context.Context, sessionID string) (chat.Message, bool, error)
}

// Handler 语音服务的HTTP处理器
type Handler struct {
	speechSvc SpeechService
	chatSvc   TranscriptReader
}

// New 创建语音处理器
func New(speechSvc SpeechService, chatSvc TranscriptReader) *Handler {
	return &Handler{
		speechSvc: speechSvc,
		chatSvc:   chatSvc,
	}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/synthesize", h.handleSynthesize)
		speechRouter.Get("/session/{sessionID}/last", h.handleSpeakLast)
		speechRouter.Get("/health", h.handleHealth)
	})
}

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req speech.TTSRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	h.synthesize(r.Context(), w, req.SessionID, req.Text)
}

func (h *Handler) handleSpeakLast(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	last, ok, err := h.chatSvc.LastAssistant(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session has no answer yet")
		return
	}

	h.synthesize(r.Context(), w, sessionID, last.Content)
}

func (h *Handler) synthesize(ctx context.Context, w http.ResponseWriter, sessionID, text string) {
	resp, err := h.speechSvc.SynthesizeToBuffer(ctx, sessionID, text)
	if err != nil {
		log.Printf("[speech] TTS error: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "Error generating audio: "+err.Error())
		return
	}
	utils.RespondAudio(w, resp.Format, resp.AudioData)
}

// handleHealth 健康检查端点
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "speech",
	})
}
