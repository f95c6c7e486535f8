package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/seedkeeper/internal/seedstore"
)

// writeError maps credential store errors onto HTTP statuses. Messages are
// fixed strings so backend details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, seedstore.ErrAlreadyImported):
		http.Error(w, "already imported", http.StatusConflict)
	case errors.Is(err, seedstore.ErrUninitialized):
		http.Error(w, "not initialized", http.StatusNotFound)
	case errors.Is(err, seedstore.ErrCorrupt):
		http.Error(w, "corrupt secret", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
