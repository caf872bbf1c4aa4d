package concierge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zhouzirui/park-concierge/backend/internal/model/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/model/faq"
	"github.com/zhouzirui/park-concierge/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/park-concierge/backend/internal/service/chat"
)

// fakeCompleter returns rotating replies, or an apology when err is set.
type fakeCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return ai.Apology(f.err)
	}
	return f.replies[(len(f.prompts)-1)%len(f.replies)]
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeSynthesizer struct {
	audio []byte
	err   error
	texts []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func newResolver(completer Completer) *Resolver {
	return NewResolver(faq.MustNewTable(faq.Seed()), completer, "Disney", nil)
}

func seedAnswer(t *testing.T, keyword string) string {
	t.Helper()
	for _, e := range faq.Seed() {
		if e.Keyword == keyword {
			return e.Answer
		}
	}
	t.Fatalf("keyword %q not in seed", keyword)
	return ""
}

func TestResolveTicketsQuestionUsesFAQ(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"unused"}}
	r := newResolver(completer)

	got := r.Resolve(context.Background(), "How much are tickets?")
	if got.Source != chat.SourceFAQ {
		t.Fatalf("expected FAQ source, got %s", got.Source)
	}
	if got.Answer != seedAnswer(t, "tickets") {
		t.Fatalf("expected verbatim tickets answer, got %q", got.Answer)
	}
	if got.Keyword != "tickets" {
		t.Fatalf("unexpected keyword %q", got.Keyword)
	}
	if completer.calls() != 0 {
		t.Fatal("FAQ hits must not call the completion endpoint")
	}
}

func TestResolveWeatherQuestionFallsBackToAI(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"Sunny with a chance of fireworks!"}}
	r := newResolver(completer)

	question := "What's the weather like at the parks this weekend?"
	got := r.Resolve(context.Background(), question)
	if got.Source != chat.SourceAI {
		t.Fatalf("expected AI source, got %s", got.Source)
	}
	if got.Answer != "Sunny with a chance of fireworks!" {
		t.Fatalf("unexpected answer %q", got.Answer)
	}
	if len(completer.prompts) != 1 || completer.prompts[0] != ai.BuildQuestionPrompt("Disney", question) {
		t.Fatalf("unexpected prompts: %v", completer.prompts)
	}
}

func TestResolveFirstMatchingKeywordWins(t *testing.T) {
	r := newResolver(&fakeCompleter{replies: []string{"unused"}})

	got := r.Resolve(context.Background(), "What is the refund policy for tickets?")
	if got.Keyword != "tickets" || got.Answer != seedAnswer(t, "tickets") {
		t.Fatalf("expected tickets to win by table order, got %q", got.Keyword)
	}
}

func TestResolveAIRepeatsAreNonEmptyAndTagged(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"Try Space Mountain!", "Ride Tron first!"}}
	r := newResolver(completer)

	first := r.Resolve(context.Background(), "Best ride for thrill seekers?")
	second := r.Resolve(context.Background(), "Best ride for thrill seekers?")
	for _, res := range []Resolution{first, second} {
		if res.Source != chat.SourceAI || strings.TrimSpace(res.Answer) == "" {
			t.Fatalf("unexpected resolution %+v", res)
		}
	}
}

func TestResolveTransportErrorIsApologyTaggedAI(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("dial tcp: connection refused")}
	r := newResolver(completer)

	got := r.Resolve(context.Background(), "Where can I park my boat?")
	if got.Source != chat.SourceAI {
		t.Fatalf("expected AI source on failure, got %s", got.Source)
	}
	if !strings.Contains(got.Answer, "Sorry") || !strings.Contains(got.Answer, "connection refused") {
		t.Fatalf("expected apology with detail, got %q", got.Answer)
	}
}

func TestResolveWithoutCompleterApologizes(t *testing.T) {
	r := newResolver(nil)

	got := r.Resolve(context.Background(), "Any new rides?")
	if got.Source != chat.SourceAI || !strings.HasPrefix(got.Answer, "Sorry") {
		t.Fatalf("unexpected resolution %+v", got)
	}
}

func newAssistant(t *testing.T, completer Completer, speech Synthesizer) (*Assistant, *chatservice.Service, string) {
	t.Helper()
	store := chatservice.NewService(nil)
	session, err := store.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	return NewAssistant(store, newResolver(completer), speech), store, session.ID
}

func TestAskRecordsBothTurns(t *testing.T) {
	a, store, sessionID := newAssistant(t, &fakeCompleter{replies: []string{"unused"}}, nil)
	ctx := context.Background()

	reply, err := a.Ask(ctx, sessionID, "  How much are tickets?  ", false)
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if reply.Answer.Source != chat.SourceFAQ || reply.Answer.Content != seedAnswer(t, "tickets") {
		t.Fatalf("unexpected answer turn %+v", reply.Answer)
	}
	if reply.Question.Content != "How much are tickets?" {
		t.Fatalf("question should be trimmed, got %q", reply.Question.Content)
	}

	transcript, _ := store.LoadTranscript(ctx, sessionID)
	if len(transcript) != 2 || transcript[0].Role != chat.RoleUser || transcript[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected transcript %+v", transcript)
	}
}

func TestAskRejectsEmptyQuestionAndUnknownSession(t *testing.T) {
	a, store, sessionID := newAssistant(t, &fakeCompleter{replies: []string{"x"}}, nil)
	ctx := context.Background()

	if _, err := a.Ask(ctx, sessionID, "   ", false); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
	if _, err := a.Ask(ctx, "missing", "hi", false); !errors.Is(err, chatservice.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	transcript, _ := store.LoadTranscript(ctx, sessionID)
	if len(transcript) != 0 {
		t.Fatal("rejected questions must not be recorded")
	}
}

func TestAskContinuesAfterCompletionFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused")}
	a, store, sessionID := newAssistant(t, completer, nil)
	ctx := context.Background()

	first, err := a.Ask(ctx, sessionID, "Is Space Mountain open?", false)
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if first.Answer.Source != chat.SourceAI || !strings.Contains(first.Answer.Content, "connection refused") {
		t.Fatalf("unexpected answer %+v", first.Answer)
	}

	second, err := a.Ask(ctx, sessionID, "What about Genie+?", false)
	if err != nil {
		t.Fatalf("second Ask err: %v", err)
	}
	if second.Answer.Source != chat.SourceFAQ {
		t.Fatalf("expected FAQ answer for Genie+, got %s", second.Answer.Source)
	}

	transcript, _ := store.LoadTranscript(ctx, sessionID)
	if len(transcript) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(transcript))
	}
}

func TestAskWithAudio(t *testing.T) {
	speech := &fakeSynthesizer{audio: []byte("mp3")}
	a, _, sessionID := newAssistant(t, &fakeCompleter{replies: []string{"x"}}, speech)

	reply, err := a.Ask(context.Background(), sessionID, "Tell me about dining", true)
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if string(reply.Audio) != "mp3" || reply.AudioError != "" {
		t.Fatalf("unexpected audio reply %+v", reply)
	}
	if len(speech.texts) != 1 || speech.texts[0] != reply.Answer.Content {
		t.Fatalf("expected the answer to be voiced, got %v", speech.texts)
	}
}

func TestAskSpeechFailureKeepsTextAnswer(t *testing.T) {
	speech := &fakeSynthesizer{err: errors.New("tts unavailable")}
	a, store, sessionID := newAssistant(t, &fakeCompleter{replies: []string{"x"}}, speech)
	ctx := context.Background()

	reply, err := a.Ask(ctx, sessionID, "How much are tickets?", true)
	if err != nil {
		t.Fatalf("speech failure must not fail Ask, got %v", err)
	}
	if reply.Audio != nil {
		t.Fatal("expected no audio on failure")
	}
	if !strings.Contains(reply.AudioError, "tts unavailable") {
		t.Fatalf("unexpected audio error %q", reply.AudioError)
	}
	if reply.Answer.Content != seedAnswer(t, "tickets") {
		t.Fatalf("text answer must survive speech failure, got %q", reply.Answer.Content)
	}

	transcript, _ := store.LoadTranscript(ctx, sessionID)
	for _, turn := range transcript {
		if strings.Contains(turn.Content, "tts unavailable") {
			t.Fatal("speech errors must not reach the transcript")
		}
	}
}

func TestAskWithoutAudioSkipsSpeech(t *testing.T) {
	speech := &fakeSynthesizer{audio: []byte("mp3")}
	a, _, sessionID := newAssistant(t, &fakeCompleter{replies: []string{"x"}}, speech)

	reply, err := a.Ask(context.Background(), sessionID, "tickets", false)
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if reply.Audio != nil || len(speech.texts) != 0 {
		t.Fatal("speech must only run when requested")
	}
}

func TestSpeakLast(t *testing.T) {
	speech := &fakeSynthesizer{audio: []byte("mp3")}
	a, _, sessionID := newAssistant(t, &fakeCompleter{replies: []string{"x"}}, speech)
	ctx := context.Background()

	if _, err := a.SpeakLast(ctx, sessionID); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer, got %v", err)
	}

	reply, _ := a.Ask(ctx, sessionID, "Where is the parking?", false)
	audio, err := a.SpeakLast(ctx, sessionID)
	if err != nil || string(audio) != "mp3" {
		t.Fatalf("SpeakLast audio=%q err=%v", audio, err)
	}
	if speech.texts[len(speech.texts)-1] != reply.Answer.Content {
		t.Fatal("SpeakLast must voice the last answer")
	}

	noSpeech, _, otherID := newAssistant(t, &fakeCompleter{replies: []string{"x"}}, nil)
	if _, err := noSpeech.SpeakLast(ctx, otherID); !errors.Is(err, ErrSpeechDisabled) {
		t.Fatalf("expected ErrSpeechDisabled, got %v", err)
	}
}

// blockingCompleter tracks how many completions run at once.
type blockingCompleter struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (b *blockingCompleter) Complete(_ context.Context, prompt string) string {
	b.mu.Lock()
	b.active++
	if b.active > b.maxSeen {
		b.maxSeen = b.active
	}
	b.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	b.mu.Lock()
	b.active--
	b.mu.Unlock()
	return "answer for " + prompt
}

func TestAskSerializesPerSession(t *testing.T) {
	completer := &blockingCompleter{}
	a, store, sessionID := newAssistant(t, completer, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := a.Ask(ctx, sessionID, fmt.Sprintf("question %d", i), false); err != nil {
				t.Errorf("Ask err: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if completer.maxSeen != 1 {
		t.Fatalf("expected one question in flight per session, saw %d", completer.maxSeen)
	}

	transcript, _ := store.LoadTranscript(ctx, sessionID)
	if len(transcript) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(transcript))
	}
	for i := 0; i < len(transcript); i += 2 {
		if transcript[i].Role != chat.RoleUser || transcript[i+1].Role != chat.RoleAssistant {
			t.Fatalf("turns interleaved at %d: %+v", i, transcript[i:i+2])
		}
		if !strings.HasSuffix(transcript[i+1].Content, transcript[i].Content) {
			t.Fatalf("answer %q does not follow its question %q", transcript[i+1].Content, transcript[i].Content)
		}
	}
}

func TestEndSessionDropsSession(t *testing.T) {
	a, _, sessionID := newAssistant(t, &fakeCompleter{replies: []string{"x"}}, nil)
	ctx := context.Background()

	if err := a.EndSession(ctx, sessionID); err != nil {
		t.Fatalf("EndSession err: %v", err)
	}
	if _, err := a.Ask(ctx, sessionID, "tickets", false); !errors.Is(err, chatservice.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
