package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/park-concierge/backend/internal/model/speech"
	"github.com/zhouzirui/park-concierge/backend/internal/observe"
)

var ErrEmptyText = errors.New("TTS text is empty")

// speechCreator is the slice of the go-openai client used for synthesis.
type speechCreator interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Service renders answers to audio with a single fixed voice.
type Service struct {
	config  *speech.SpeechConfig
	client  speechCreator
	metrics *observe.Metrics
}

// NewService creates the speech service for the hosted TTS endpoint.
func NewService(config *speech.SpeechConfig, metrics *observe.Metrics) *Service {
	clientCfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientCfg.BaseURL = config.BaseURL
	}
	clientCfg.HTTPClient = observe.HTTPClient("tts")

	return &Service{
		config:  config,
		client:  openai.NewClientWithConfig(clientCfg),
		metrics: metrics,
	}
}

// Voice returns the configured voice profile.
func (s *Service) Voice() string {
	return s.config.Voice
}

// Synthesize returns the audio for text. On failure it returns nil audio and
// the error for the caller to display.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.SynthesizeToBuffer(ctx, "", text)
	if err != nil {
		return nil, err
	}
	return resp.AudioData, nil
}

// SynthesizeToBuffer synthesizes text for a session.
func (s *Service) SynthesizeToBuffer(ctx context.Context, sessionID, text string) (*speech.TTSResponse, error) {
	return s.SynthesizeSpeech(ctx, &speech.TTSRequest{SessionID: sessionID, Text: text})
}

// SynthesizeSpeech performs one round trip to the TTS endpoint. The audio
// goes through a uniquely named temporary file that is removed on every
// path.
func (s *Service) SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
		defer cancel()
	}

	format := s.Format()
	start := time.Now()

	audio, err := s.fetch(ctx, req.Text, format)
	if err != nil {
		s.metrics.RecordSpeech(ctx, "error", time.Since(start))
		log.Printf("[speech] TTS error session=%s: %v", req.SessionID, err)
		return nil, err
	}
	s.metrics.RecordSpeech(ctx, "ok", time.Since(start))

	return &speech.TTSResponse{
		SessionID: req.SessionID,
		AudioData: audio,
		Format:    format,
		Voice:     s.config.Voice,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) fetch(ctx context.Context, text, format string) ([]byte, error) {
	raw, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.config.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.config.Voice),
		ResponseFormat: openai.SpeechResponseFormat(format),
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer raw.Close()

	return s.spool(raw, format)
}

// spool writes body to a scoped temp file and reads it back fully.
func (s *Service) spool(body io.Reader, format string) ([]byte, error) {
	f, err := os.CreateTemp(s.config.TempDir, "speech-*."+format)
	if err != nil {
		return nil, fmt.Errorf("create temp audio file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return nil, fmt.Errorf("write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp audio file: %w", err)
	}

	audio, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read temp audio file: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("TTS returned no audio")
	}
	return audio, nil
}

// Format is the audio container produced by the service.
func (s *Service) Format() string {
	format := strings.ToLower(strings.TrimSpace(s.config.Format))
	if format == "" {
		return "mp3"
	}
	return format
}
