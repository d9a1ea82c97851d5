package middleware

import (
	"encoding/json"
	"net/http"
)

// WriteDetail writes the {"detail": msg} error body the frontend expects.
func WriteDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
