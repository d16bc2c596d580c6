package security

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every error reply. Error is a stable
// machine-readable code; Message is for people.
type ErrorResponse struct {
	Status        int    `json:"status"`
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// WriteJSONError replies with code and no message.
func WriteJSONError(w http.ResponseWriter, r *http.Request, status int, code string) {
	WriteJSONErrorMessage(w, r, status, code, "")
}

// WriteJSONErrorMessage replies with code and message. The request's
// correlation id is echoed in the header and the body.
func WriteJSONErrorMessage(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	body := ErrorResponse{
		Status:        status,
		Error:         code,
		Message:       message,
		CorrelationID: CorrelationIDFromContext(r.Context()),
	}

	h := w.Header()
	if body.CorrelationID != "" {
		h.Set(CorrelationIDHeader, body.CorrelationID)
	}
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
