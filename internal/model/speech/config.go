package speech

// SpeechConfig describes the hosted text-to-speech endpoint.
type SpeechConfig struct {
	APIKey  string `json:"-"`
	BaseURL string `json:"baseUrl,omitempty"`

	// TTS
	Model  string `json:"model"`
	Voice  string `json:"voice"`  // single fixed voice profile
	Format string `json:"format"` // mp3, opus, aac, flac

	// TempDir holds the per-call scratch file; empty means os.TempDir().
	TempDir string `json:"tempDir,omitempty"`
	Timeout int    `json:"timeout"` // seconds
}
