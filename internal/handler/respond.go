package handler

import (
	"encoding/json"
	"net/http"

	"github.com/portfolio/backend/internal/model"
)

// envelope is the uniform JSON response shape: {success, message?, data?,
// pagination?}.
type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func fail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Success: false, Message: message})
}
