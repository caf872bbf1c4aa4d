package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/park-concierge/backend/internal/handler/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/handler/faq"
	"github.com/zhouzirui/park-concierge/backend/internal/handler/speech"
	middlewarePkg "github.com/zhouzirui/park-concierge/backend/internal/middleware"
	faqModel "github.com/zhouzirui/park-concierge/backend/internal/model/faq"
	chatService "github.com/zhouzirui/park-concierge/backend/internal/service/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/service/concierge"
	speechService "github.com/zhouzirui/park-concierge/backend/internal/service/speech"
	"github.com/zhouzirui/park-concierge/backend/pkg/utils"
)

// Dependencies groups the services the HTTP layer is built on. Speech and
// Metrics are optional.
type Dependencies struct {
	FAQ       *faqModel.Table
	Topics    []string
	Chat      *chatService.Service
	Assistant *concierge.Assistant
	Speech    *speechService.Service
	Metrics   http.Handler
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	audioFormat := ""
	if deps.Speech != nil {
		audioFormat = deps.Speech.Format()
	}

	faqHandler := faq.New(deps.FAQ, deps.Topics)
	chatHandler := chat.New(deps.Chat, deps.Assistant, audioFormat)
	wsHandler := speech.NewWebSocketHandler(deps.Assistant, deps.Chat, audioFormat)

	r.Route("/api", func(api chi.Router) {
		faqHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)

		if deps.Speech != nil {
			speech.New(deps.Speech, deps.Chat).RegisterRoutes(api)
		} else {
			api.HandleFunc("/speech/*", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "speech synthesis is disabled")
			})
		}
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	return r
}
