package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LLM_PROVIDER", "AI_DOMAIN", "AI_MAX_TOKENS", "AI_TEMPERATURE", "AI_TIMEOUT",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL",
		"GEMINI_API_KEY", "SPEECH_ENABLED", "SPEECH_API_KEY", "SPEECH_BASE_URL",
		"SPEECH_TIMEOUT", "SPEECH_MODEL", "SPEECH_VOICE", "SPEECH_FORMAT", "FAQ_FILE_PATH", "METRICS_ENABLED", "STRICT_CREDENTIALS",
	} {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		}
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderOpenAI || cfg.AI.OpenAIModel != "gpt-3.5-turbo" {
		t.Fatalf("unexpected ai defaults: %+v", cfg.AI)
	}
	if cfg.AI.MaxTokens != 300 || cfg.AI.Temperature != 1.0 {
		t.Fatalf("unexpected sampling defaults: max=%d temp=%v", cfg.AI.MaxTokens, cfg.AI.Temperature)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.AI.Timeout)
	}
	if cfg.AI.Domain != "Disney" {
		t.Fatalf("unexpected domain: %s", cfg.AI.Domain)
	}
	if !cfg.Speech.Enabled || cfg.Speech.Voice != "nova" || cfg.Speech.Model != "tts-1" || cfg.Speech.Format != "mp3" {
		t.Fatalf("unexpected speech defaults: %+v", cfg.Speech)
	}
	if cfg.AI.Enabled() {
		t.Fatal("ai should not report enabled without a key")
	}
}

func TestLoadServerAddrVariants(t *testing.T) {
	cases := map[string]string{
		"9090":           ":9090",
		":7070":          ":7070",
		"127.0.0.1:6060": "127.0.0.1:6060",
	}

	for port, want := range cases {
		clearEnv(t)
		t.Setenv("PORT", port)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load(%s) err: %v", port, err)
		}
		if cfg.Server.Addr != want {
			t.Fatalf("PORT=%s: got %s want %s", port, cfg.Server.Addr, want)
		}
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{key: "PORT", value: "80 80"},
		{key: "LLM_PROVIDER", value: "unknown"},
		{key: "AI_TEMPERATURE", value: "3.5"},
		{key: "AI_MAX_TOKENS", value: "0"},
		{key: "AI_MAX_TOKENS", value: "many"},
		{key: "SPEECH_TIMEOUT", value: "0"},
	}

	for _, tc := range cases {
		clearEnv(t)
		t.Setenv(tc.key, tc.value)
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for %s=%q", tc.key, tc.value)
		}
	}
}

func TestSpeechFallsBackToOpenAICredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Speech.APIKey != "sk-test" || cfg.Speech.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("expected speech to reuse openai credentials, got %+v", cfg.Speech)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("expected ai enabled with openai key")
	}
}

func TestStrictCredentialsFailFast(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRICT_CREDENTIALS", "true")

	if _, err := Load(); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	if _, err := Load(); err != nil {
		t.Fatalf("expected strict load to succeed with key, got %v", err)
	}
}

func TestAIEnabledPerProvider(t *testing.T) {
	cases := []struct {
		cfg  AIConfig
		want bool
	}{
		{cfg: AIConfig{Provider: ProviderArk, ArkAPIKey: "k"}, want: false},
		{cfg: AIConfig{Provider: ProviderArk, ArkAPIKey: "k", ArkModel: "m"}, want: true},
		{cfg: AIConfig{Provider: ProviderArk, ArkAccessKey: "a", ArkSecretKey: "s", ArkModel: "m"}, want: true},
		{cfg: AIConfig{Provider: ProviderGemini, GeminiAPIKey: "g"}, want: true},
		{cfg: AIConfig{Provider: "other", OpenAIAPIKey: "k"}, want: false},
	}

	for i, tc := range cases {
		if got := tc.cfg.Enabled(); got != tc.want {
			t.Errorf("case %d: Enabled() = %v, want %v", i, got, tc.want)
		}
	}
}
