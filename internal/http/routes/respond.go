package routes

import (
	"encoding/json"
	"net/http"

	"github.com/devfolio/portfolio/internal/email"
)

type apiError struct {
	Error   string             `json:"error"`
	Details string             `json:"details,omitempty"`
	Fields  []email.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, apiError{Error: msg, Details: details})
}
