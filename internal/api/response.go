package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// envelope is the body shape shared by every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonSuccess writes a successful envelope. Message and data may be empty.
func jsonSuccess(w http.ResponseWriter, status int, message string, data any) {
	jsonResponse(w, status, envelope{Success: true, Message: message, Data: data})
}

// jsonError writes a failed envelope.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, envelope{Success: false, Message: message})
}

// serverError logs err and writes a 500 envelope carrying the underlying error.
func serverError(w http.ResponseWriter, message string, err error) {
	slog.Error(message, "error", err)
	jsonResponse(w, http.StatusInternalServerError, envelope{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
