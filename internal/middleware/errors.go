package middleware

import (
	"encoding/json"
	"net/http"
)

type contextKey string

// writeError writes the API error body used across the service.
func writeError(w http.ResponseWriter, status int, code, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"kind":    kind,
		"message": message,
	})
}
