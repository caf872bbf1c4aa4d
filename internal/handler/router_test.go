package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhouzirui/park-concierge/backend/internal/model/faq"
	chatService "github.com/zhouzirui/park-concierge/backend/internal/service/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/service/concierge"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, prompt string) string { return prompt }

func newTestRouter(metrics http.Handler) http.Handler {
	table := faq.MustNewTable(faq.Seed())
	chatSvc := chatService.NewService(nil)
	resolver := concierge.NewResolver(table, echoCompleter{}, "Disney", nil)
	return NewRouter(Dependencies{
		FAQ:       table,
		Topics:    faq.Topics(),
		Chat:      chatSvc,
		Assistant: concierge.NewAssistant(chatSvc, resolver, nil),
		Metrics:   metrics,
	})
}

func TestRouterServesAPI(t *testing.T) {
	r := newTestRouter(nil)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/faqs", http.StatusOK},
		{http.MethodPost, "/api/session", http.StatusCreated},
		{http.MethodGet, "/api/session/missing/messages", http.StatusNotFound},
		{http.MethodPost, "/api/speech/synthesize", http.StatusServiceUnavailable},
		{http.MethodGet, "/metrics", http.StatusNotFound},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		if rr.Code != tc.want {
			t.Errorf("%s %s: got %d want %d", tc.method, tc.path, rr.Code, tc.want)
		}
	}
}

func TestRouterMountsMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("# HELP concierge_resolutions_total"))
	})
	r := newTestRouter(metrics)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
