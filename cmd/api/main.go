package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/park-concierge/backend/internal/config"
	"github.com/zhouzirui/park-concierge/backend/internal/handler"
	"github.com/zhouzirui/park-concierge/backend/internal/model/faq"
	speechModel "github.com/zhouzirui/park-concierge/backend/internal/model/speech"
	"github.com/zhouzirui/park-concierge/backend/internal/observe"
	"github.com/zhouzirui/park-concierge/backend/internal/service/ai"
	"github.com/zhouzirui/park-concierge/backend/internal/service/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/service/concierge"
	"github.com/zhouzirui/park-concierge/backend/internal/service/speech"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.MetricsEnabled {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: version,
		})
		if err != nil {
			log.Printf("warning: failed to initialize metrics: %v", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Printf("warning: metrics shutdown: %v", err)
				}
			}()
			metricsHandler = observe.Handler()
		}
	}
	metrics := observe.DefaultMetrics()

	table, err := loadFAQ(cfg.FAQ)
	if err != nil {
		log.Fatalf("failed to load FAQ table: %v", err)
	}
	log.Printf("FAQ table loaded with %d entries", table.Len())

	chatService := chat.NewService(metrics)

	// A missing completion client is not fatal: misses get an apology.
	var completer concierge.Completer
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, metrics)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality")
		} else {
			completer = aiService
			log.Printf("AI service initialized provider=%s model=%s", cfg.AI.Provider, cfg.AI.Model())
		}
	} else {
		log.Printf("credentials for LLM provider %q not configured, FAQ-only mode", cfg.AI.Provider)
	}

	var speechService *speech.Service
	if cfg.Speech.Enabled {
		speechService = speech.NewService(&speechModel.SpeechConfig{
			APIKey:  cfg.Speech.APIKey,
			BaseURL: cfg.Speech.BaseURL,
			Model:   cfg.Speech.Model,
			Voice:   cfg.Speech.Voice,
			Format:  cfg.Speech.Format,
			TempDir: cfg.Speech.TempDir,
			Timeout: cfg.Speech.Timeout,
		}, metrics)
		log.Printf("Speech service initialized voice=%s format=%s", cfg.Speech.Voice, speechService.Format())
	} else {
		log.Println("speech synthesis disabled by configuration")
	}

	resolver := concierge.NewResolver(table, completer, cfg.AI.Domain, metrics)
	var synthesizer concierge.Synthesizer
	if speechService != nil {
		synthesizer = speechService
	}
	assistant := concierge.NewAssistant(chatService, resolver, synthesizer)

	router := handler.NewRouter(handler.Dependencies{
		FAQ:       table,
		Topics:    faq.Topics(),
		Chat:      chatService,
		Assistant: assistant,
		Speech:    speechService,
		Metrics:   metricsHandler,
	})

	startServer(ctx, cfg.Server, router)
}

func loadFAQ(cfg config.FAQConfig) (*faq.Table, error) {
	if cfg.FilePath == "" {
		return faq.NewTable(faq.Seed())
	}
	return faq.LoadFile(cfg.FilePath)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Park concierge backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
