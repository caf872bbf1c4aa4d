package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/park-concierge/backend/internal/config"
	"github.com/zhouzirui/park-concierge/backend/internal/model/faq"
	speechmodel "github.com/zhouzirui/park-concierge/backend/internal/model/speech"
	"github.com/zhouzirui/park-concierge/backend/internal/service/ai"
	"github.com/zhouzirui/park-concierge/backend/internal/service/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/service/concierge"
	"github.com/zhouzirui/park-concierge/backend/internal/service/speech"
)

func main() {
	audioDir := flag.String("audio-dir", "", "directory to save an mp3 of every answer (empty disables speech)")
	faqPath := flag.String("faq", "", "YAML FAQ file overriding FAQ_FILE_PATH")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] .env not loaded, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *faqPath != "" {
		cfg.FAQ.FilePath = *faqPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table := faq.MustNewTable(faq.Seed())
	if cfg.FAQ.FilePath != "" {
		table, err = faq.LoadFile(cfg.FAQ.FilePath)
		if err != nil {
			log.Fatalf("failed to load FAQ file: %v", err)
		}
	}

	var completer concierge.Completer
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, nil)
		if err != nil {
			log.Printf("[WARN] AI unavailable: %v", err)
		} else {
			completer = aiService
		}
	} else {
		log.Printf("[WARN] no credentials for LLM provider %q, only FAQ questions will be answered", cfg.AI.Provider)
	}

	var synthesizer concierge.Synthesizer
	if *audioDir != "" && cfg.Speech.Enabled {
		if err := os.MkdirAll(*audioDir, 0o755); err != nil {
			log.Fatalf("failed to create audio dir: %v", err)
		}
		synthesizer = speech.NewService(&speechmodel.SpeechConfig{
			APIKey:  cfg.Speech.APIKey,
			BaseURL: cfg.Speech.BaseURL,
			Model:   cfg.Speech.Model,
			Voice:   cfg.Speech.Voice,
			Format:  cfg.Speech.Format,
			TempDir: cfg.Speech.TempDir,
			Timeout: cfg.Speech.Timeout,
		}, nil)
	}

	store := chat.NewService(nil)
	session, err := store.CreateSession(ctx)
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}

	resolver := concierge.NewResolver(table, completer, cfg.AI.Domain, nil)
	r := &repl{
		assistant: concierge.NewAssistant(store, resolver, synthesizer),
		store:     store,
		sessionID: session.ID,
		audioDir:  *audioDir,
		format:    cfg.Speech.Format,
		out:       os.Stdout,
	}
	if err := r.run(ctx, os.Stdin); err != nil {
		log.Fatalf("askcli: %v", err)
	}
}
