package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/park-concierge/backend/internal/model/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/observe"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionState struct {
	session    chat.Session
	transcript *chat.Transcript
}

// Service encapsulates conversation state management.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	metrics  *observe.Metrics
}

// NewService bootstraps the in-memory chat service. Transcripts live only as
// long as their session.
func NewService(metrics *observe.Metrics) *Service {
	return &Service{
		sessions: make(map[string]*sessionState),
		metrics:  metrics,
	}
}

// CreateSession provisions an anonymous session with an empty transcript.
func (s *Service) CreateSession(ctx context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{
		session:    session,
		transcript: chat.NewTranscript(),
	}
	s.mu.Unlock()

	s.metrics.SessionOpened(ctx)
	return session, nil
}

// AppendTurn validates and records a turn, returning it with ID and
// timestamp filled in.
func (s *Service) AppendTurn(_ context.Context, message chat.Message) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[message.SessionID]
	if !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if err := state.transcript.Append(message); err != nil {
		return chat.Message{}, err
	}
	return message, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return state.session, nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state.transcript.Turns(), nil
}

// LastAssistant returns the most recent assistant turn of a session.
func (s *Service) LastAssistant(_ context.Context, sessionID string) (chat.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Message{}, false, ErrSessionNotFound
	}
	msg, found := state.transcript.LastAssistant()
	return msg, found, nil
}

// EndSession discards a session and its transcript.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.metrics.SessionClosed(ctx)
	return nil
}
