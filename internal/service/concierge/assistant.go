package concierge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/zhouzirui/park-concierge/backend/internal/model/chat"
)

var (
	ErrEmptyQuestion  = errors.New("question is empty")
	ErrNoAnswer       = errors.New("session has no answer yet")
	ErrSpeechDisabled = errors.New("speech synthesis is disabled")

	errNoCompleter = errors.New("completion client is not configured")
)

// SessionStore is the transcript storage the assistant writes turns to.
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	AppendTurn(ctx context.Context, message chat.Message) (chat.Message, error)
	LastAssistant(ctx context.Context, sessionID string) (chat.Message, bool, error)
	EndSession(ctx context.Context, sessionID string) error
}

// Synthesizer renders text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Reply is the outcome of one question. Audio is nil when speech was not
// requested or failed; AudioError then carries the failure text.
type Reply struct {
	Question   chat.Message `json:"question"`
	Answer     chat.Message `json:"answer"`
	Keyword    string       `json:"keyword,omitempty"`
	Audio      []byte       `json:"-"`
	AudioError string       `json:"audioError,omitempty"`
}

// Assistant runs the turn pipeline: record the question, resolve it, record
// the answer and optionally voice it.
type Assistant struct {
	store    SessionStore
	resolver *Resolver
	speech   Synthesizer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAssistant builds the pipeline. speech may be nil.
func NewAssistant(store SessionStore, resolver *Resolver, speech Synthesizer) *Assistant {
	return &Assistant{
		store:    store,
		resolver: resolver,
		speech:   speech,
		locks:    make(map[string]*sync.Mutex),
	}
}

// SpeechEnabled reports whether answers can be voiced.
func (a *Assistant) SpeechEnabled() bool {
	return a.speech != nil
}

// Ask answers one question. Calls for the same session are serialized so a
// question is fully resolved before the next one is accepted.
func (a *Assistant) Ask(ctx context.Context, sessionID, question string, withAudio bool) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}
	if _, err := a.store.GetSession(ctx, sessionID); err != nil {
		return Reply{}, err
	}

	lock := a.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	userTurn, err := a.store.AppendTurn(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   question,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("record question: %w", err)
	}

	resolution := a.resolver.Resolve(ctx, question)

	answerTurn, err := a.store.AppendTurn(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   resolution.Answer,
		Source:    resolution.Source,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("record answer: %w", err)
	}

	reply := Reply{
		Question: userTurn,
		Answer:   answerTurn,
		Keyword:  resolution.Keyword,
	}

	if withAudio && a.speech != nil {
		audio, err := a.speech.Synthesize(ctx, resolution.Answer)
		if err != nil {
			log.Printf("[concierge] speech failed session=%s: %v", sessionID, err)
			reply.AudioError = fmt.Sprintf("Error generating audio: %v", err)
		} else {
			reply.Audio = audio
		}
	}

	return reply, nil
}

// SpeakLast voices the most recent answer of a session.
func (a *Assistant) SpeakLast(ctx context.Context, sessionID string) ([]byte, error) {
	if a.speech == nil {
		return nil, ErrSpeechDisabled
	}
	last, ok, err := a.store.LastAssistant(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoAnswer
	}
	return a.speech.Synthesize(ctx, last.Content)
}

// EndSession discards the session and its lock.
func (a *Assistant) EndSession(ctx context.Context, sessionID string) error {
	if err := a.store.EndSession(ctx, sessionID); err != nil {
		return err
	}
	a.mu.Lock()
	delete(a.locks, sessionID)
	a.mu.Unlock()
	return nil
}

func (a *Assistant) sessionLock(sessionID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[sessionID] = lock
	}
	return lock
}
