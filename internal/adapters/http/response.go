package http

import (
	"encoding/json"
	"net/http"
)

// envelope is the body of every JSON response. Data and Message are mutually
// exclusive on success; errors carry Code and Message.
type envelope struct {
	Status    string `json:"status"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, statusCode int, body envelope) {
	body.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	respond(w, r, statusCode, envelope{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	respond(w, r, statusCode, envelope{Status: "success", Message: message})
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	respond(w, r, statusCode, envelope{Status: "error", Code: code, Message: message})
}
