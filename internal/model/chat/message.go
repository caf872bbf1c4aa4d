package chat

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Source records which path answered an assistant turn.
type Source string

const (
	SourceFAQ Source = "FAQ"
	SourceAI  Source = "AI"
)

// Valid reports whether s is a known resolution source.
func (s Source) Valid() bool {
	return s == SourceFAQ || s == SourceAI
}

// Badge is the caption shown under an assistant answer.
func (s Source) Badge() string {
	switch s {
	case SourceFAQ:
		return "This is a predefined answer from our FAQ database"
	case SourceAI:
		return "This response was generated by AI"
	default:
		return ""
	}
}

// Message is a single turn of a session transcript. Source is set only on
// assistant turns.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Source    Source    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
