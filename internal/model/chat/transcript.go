package chat

import (
	"errors"
	"fmt"
)

var ErrInvalidTurn = errors.New("invalid turn")

// Transcript is the append-only turn log of one session. It is owned by a
// single session context and is not safe for concurrent use on its own.
type Transcript struct {
	turns []Message
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{turns: make([]Message, 0, 16)}
}

// Append validates and records a turn. User turns must not carry a source;
// assistant turns must carry one.
func (t *Transcript) Append(msg Message) error {
	if err := validateTurn(msg); err != nil {
		return err
	}
	t.turns = append(t.turns, msg)
	return nil
}

// Turns returns a copy of the recorded turns in order.
func (t *Transcript) Turns() []Message {
	copied := make([]Message, len(t.turns))
	copy(copied, t.turns)
	return copied
}

// Len reports the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// LastAssistant returns the most recent assistant turn.
func (t *Transcript) LastAssistant() (Message, bool) {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Role == RoleAssistant {
			return t.turns[i], true
		}
	}
	return Message{}, false
}

func validateTurn(msg Message) error {
	switch msg.Role {
	case RoleUser:
		if msg.Source != "" {
			return fmt.Errorf("%w: user turn cannot carry source %q", ErrInvalidTurn, msg.Source)
		}
	case RoleAssistant:
		if !msg.Source.Valid() {
			return fmt.Errorf("%w: assistant turn requires a source, got %q", ErrInvalidTurn, msg.Source)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTurn, msg.Role)
	}
	return nil
}
