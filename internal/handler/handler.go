package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// envelope is the response shape shared by every endpoint: data on success,
// a human-readable reason on failure.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing left to do for the client.
		return
	}
}

// writeSuccess writes a success envelope with the given status code.
func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError writes an error envelope with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	if status >= http.StatusInternalServerError {
		logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	} else {
		logger.Debug().Str("error", message).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, envelope{Success: false, Error: message})
}
