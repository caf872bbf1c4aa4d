package faq

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/park-concierge/backend/internal/model/faq"
	"github.com/zhouzirui/park-concierge/backend/pkg/utils"
)

// Handler exposes the FAQ table and the topic list shown beside the chat.
type Handler struct {
	table  *faq.Table
	topics []string
}

// New creates the FAQ handler.
func New(table *faq.Table, topics []string) *Handler {
	return &Handler{table: table, topics: topics}
}

// RegisterRoutes attaches FAQ routes to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/faqs", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"entries": h.table.Entries(),
		"topics":  h.topics,
	})
}
