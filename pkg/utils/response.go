package utils

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondAudio writes raw audio bytes with an audio/<format> content type.
func RespondAudio(w http.ResponseWriter, format string, audio []byte) {
	if format == "" {
		format = "mp3"
	}
	w.Header().Set("Content-Type", "audio/"+format)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Content-Disposition", "inline; filename=answer."+format)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		log.Printf("failed to write audio response: %v", err)
	}
}

// DecodeJSON decodes a request body into v.
func DecodeJSON(body io.Reader, v interface{}) error {
	return sonic.ConfigStd.NewDecoder(body).Decode(v)
}
