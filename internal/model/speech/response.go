package speech

import "time"

// TTSResponse carries synthesized audio for exactly one answer. It is never
// cached or stored in a transcript.
type TTSResponse struct {
	SessionID string    `json:"sessionId"`
	AudioData []byte    `json:"-"`
	Format    string    `json:"format"`
	Voice     string    `json:"voice"`
	CreatedAt time.Time `json:"createdAt"`
}
