// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"net/http"
)

// Body is the minimal error payload: {"error": "..."}.
type Body struct {
	Error string `json:"error"`
}

// RenderJSON writes v as JSON with the given status.
func RenderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RenderError writes {"error": msg} with the given status.
func RenderError(w http.ResponseWriter, status int, msg string) {
	RenderJSON(w, status, Body{Error: msg})
}
