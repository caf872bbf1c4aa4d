package speech

// TTSRequest is a synthesis request for one assistant answer.
type TTSRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}
