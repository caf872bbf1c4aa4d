package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/park-concierge/backend/internal/config"
	"github.com/zhouzirui/park-concierge/backend/internal/observe"
)

// Service is the completion client: one round trip per prompt, with a fixed
// system instruction and fixed sampling parameters.
type Service struct {
	chain       compose.Runnable[map[string]any, *schema.Message]
	provider    string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	metrics     *observe.Metrics
}

// NewService creates the chat model of the configured provider and compiles
// the prompt chain around it.
func NewService(ctx context.Context, cfg config.AIConfig, metrics *observe.Metrics) (*Service, error) {
	chatModel, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg, metrics)
}

// NewServiceWithModel compiles the prompt chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, cfg config.AIConfig, metrics *observe.Metrics) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	provider := cfg.Provider
	if provider == "" {
		provider = config.ProviderOpenAI
	}

	return &Service{
		chain:       runnable,
		provider:    provider,
		maxTokens:   maxTokens,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
		metrics:     metrics,
	}, nil
}

// MaxTokens is the output length bound sent with every request.
func (s *Service) MaxTokens() int {
	return s.maxTokens
}

// Generate sends prompt to the endpoint. Failures are returned as *Error.
func (s *Service) Generate(ctx context.Context, promptText string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	input := map[string]any{
		"system": SystemPrompt,
		"query":  promptText,
	}

	start := time.Now()
	response, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(
		model.WithMaxTokens(s.maxTokens),
		model.WithTemperature(s.temperature),
	))
	if err == nil && (response == nil || strings.TrimSpace(response.Content) == "") {
		err = &Error{Kind: KindMalformed, Err: ErrEmptyCompletion}
	}
	if err != nil {
		typed := wrapError(err)
		s.metrics.RecordCompletion(ctx, s.provider, string(typed.Kind), time.Since(start))
		return "", typed
	}

	s.metrics.RecordCompletion(ctx, s.provider, "", time.Since(start))
	log.Printf("[ai] generated response provider=%s length=%d", s.provider, len(response.Content))
	return response.Content, nil
}

// Complete never fails: errors are folded into an apology that carries the
// failure detail.
func (s *Service) Complete(ctx context.Context, promptText string) string {
	text, err := s.Generate(ctx, promptText)
	if err != nil {
		log.Printf("[ai] completion failed: %v", err)
		return Apology(err)
	}
	return text
}

// Apology renders a completion failure for the guest.
func Apology(err error) string {
	return fmt.Sprintf("Sorry, I couldn't generate a response at the moment. Error: %v", err)
}
