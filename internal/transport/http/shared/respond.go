// Package shared holds the JSON response helpers every handler uses.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "btoflow/pkg/domain-errors"
)

// ErrorEnvelope is the JSON error body.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error onto its HTTP status and a stable JSON
// envelope. Unknown errors become 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.GetCode(err)
	message := dErrors.Message(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeStorage {
		message = ""
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), ErrorEnvelope{
		Error:   string(code),
		Message: message,
	})
}
