// Package handlers provides HTTP request handlers for the formulary API endpoints: liveness and
// readiness probes, drug search and drug lookup, with input validation and JSON error bodies.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/giygas/nlem-api/logging"
)

// RespondWithJSON writes payload as a JSON response with the given status
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// RespondWithError writes a JSON error response. message must be safe to show to clients.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}
