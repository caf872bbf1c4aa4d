package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// LLM providers understood by the completion client.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
	ProviderGemini = "gemini"
)

var ErrMissingCredentials = errors.New("missing credentials")

// Config aggregates every section of the service configuration.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Speech    SpeechConfig
	FAQ       FAQConfig
	Telemetry TelemetryConfig

	// StrictCredentials validates API keys at startup instead of letting the
	// first request fail with an authentication error.
	StrictCredentials bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{Server: server, AI: ai, Speech: speech}
	if err := env.Parse(&cfg.FAQ); err != nil {
		return nil, fmt.Errorf("parse faq config: %w", err)
	}
	if err := env.Parse(&cfg.Telemetry); err != nil {
		return nil, fmt.Errorf("parse telemetry config: %w", err)
	}

	strict := struct {
		Value bool `env:"STRICT_CREDENTIALS" envDefault:"false"`
	}{}
	if err := env.Parse(&strict); err != nil {
		return nil, fmt.Errorf("parse STRICT_CREDENTIALS: %w", err)
	}
	cfg.StrictCredentials = strict.Value

	if cfg.StrictCredentials {
		if err := cfg.ValidateCredentials(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ValidateCredentials checks that every enabled hosted endpoint has a key.
func (c *Config) ValidateCredentials() error {
	if !c.AI.Enabled() {
		return fmt.Errorf("%w: llm provider %q", ErrMissingCredentials, c.AI.Provider)
	}
	if c.Speech.Enabled && c.Speech.APIKey == "" {
		return fmt.Errorf("%w: speech (set SPEECH_API_KEY or OPENAI_API_KEY)", ErrMissingCredentials)
	}
	return nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse server config: %w", err)
	}

	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are accepted verbatim.
		cfg.Addr = port
		return cfg, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	cfg.Addr = ":" + port
	return cfg, nil
}

// AIConfig describes the hosted chat-completion endpoint.
type AIConfig struct {
	Provider    string        `env:"LLM_PROVIDER" envDefault:"openai"`
	Domain      string        `env:"AI_DOMAIN" envDefault:"Disney"`
	MaxTokens   int           `env:"AI_MAX_TOKENS" envDefault:"300"`
	Temperature float64       `env:"AI_TEMPERATURE" envDefault:"1.0"`
	Timeout     time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`

	ArkAPIKey    string `env:"ARK_API_KEY"`
	ArkAccessKey string `env:"ARK_ACCESS_KEY"`
	ArkSecretKey string `env:"ARK_SECRET_KEY"`
	ArkModel     string `env:"ARK_MODEL"`
	ArkBaseURL   string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion    string `env:"ARK_REGION" envDefault:"cn-beijing"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

// Enabled reports whether the selected provider has the keys it needs.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderArk:
		return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	default:
		return false
	}
}

// Model returns the model name of the selected provider.
func (c AIConfig) Model() string {
	switch c.Provider {
	case ProviderArk:
		return c.ArkModel
	case ProviderGemini:
		return c.GeminiModel
	default:
		return c.OpenAIModel
	}
}

func loadAIConfig() (AIConfig, error) {
	var cfg AIConfig
	if err := env.Parse(&cfg); err != nil {
		return AIConfig{}, fmt.Errorf("parse ai config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch cfg.Provider {
	case ProviderOpenAI, ProviderArk, ProviderGemini:
	default:
		return AIConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q", cfg.Provider)
	}

	if cfg.MaxTokens < 1 {
		return AIConfig{}, fmt.Errorf("invalid AI_MAX_TOKENS value %d: must be positive", cfg.MaxTokens)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return AIConfig{}, fmt.Errorf("invalid AI_TEMPERATURE value %v: must be within [0, 2]", cfg.Temperature)
	}
	if strings.TrimSpace(cfg.Domain) == "" {
		cfg.Domain = "Disney"
	}

	return cfg, nil
}

// SpeechConfig describes the hosted text-to-speech endpoint.
type SpeechConfig struct {
	Enabled bool   `env:"SPEECH_ENABLED" envDefault:"true"`
	APIKey  string `env:"SPEECH_API_KEY"`
	BaseURL string `env:"SPEECH_BASE_URL"`
	Model   string `env:"SPEECH_MODEL" envDefault:"tts-1"`
	Voice   string `env:"SPEECH_VOICE" envDefault:"nova"`
	Format  string `env:"SPEECH_FORMAT" envDefault:"mp3"`
	TempDir string `env:"SPEECH_TEMP_DIR"`
	Timeout int    `env:"SPEECH_TIMEOUT" envDefault:"30"`
}

func loadSpeechConfig() (SpeechConfig, error) {
	var cfg SpeechConfig
	if err := env.Parse(&cfg); err != nil {
		return SpeechConfig{}, fmt.Errorf("parse speech config: %w", err)
	}

	// Without dedicated speech settings, reuse the OpenAI account.
	fallback := struct {
		APIKey  string `env:"OPENAI_API_KEY"`
		BaseURL string `env:"OPENAI_BASE_URL"`
	}{}
	if err := env.Parse(&fallback); err != nil {
		return SpeechConfig{}, fmt.Errorf("parse speech fallback: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = fallback.APIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fallback.BaseURL
	}

	if cfg.Timeout < 1 {
		return SpeechConfig{}, fmt.Errorf("invalid SPEECH_TIMEOUT value %d: must be positive", cfg.Timeout)
	}

	return cfg, nil
}

// FAQConfig points at an optional YAML file replacing the built-in table.
type FAQConfig struct {
	FilePath string `env:"FAQ_FILE_PATH"`
}

// TelemetryConfig controls the metrics exporter.
type TelemetryConfig struct {
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"park-concierge"`
}
