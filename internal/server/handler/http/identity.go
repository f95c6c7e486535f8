package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/atinyakov/seedkeeper/internal/middleware"
	"github.com/atinyakov/seedkeeper/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IdentityService defines the identity record operations required by the IdentityHandler.
type IdentityService interface {
	SaveIdentity(ctx context.Context, id, phrase string, height models.BlockHeight, spendingKey string) error
	GetIdentity(ctx context.Context, id string) (models.Identity, bool, error)
	IdentityState(ctx context.Context, id string) (models.IdentityState, error)
	DeleteIdentity(ctx context.Context, id string) error
}

// StatePayload is the JSON response of an identity state request.
type StatePayload struct {
	State models.IdentityState `json:"state"`
}

// IdentityHandler handles HTTP requests for identity records.
type IdentityHandler struct {
	Store IdentityService
	Log   *zap.Logger
}

// Save handles POST /api/identities/{id}.
func (h *IdentityHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := identityParam(w, r)
	if !ok {
		return
	}
	var req models.Identity
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Store.SaveIdentity(r.Context(), id, req.Phrase, req.Height, req.SpendingKey); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Get handles GET /api/identities/{id}. Absent and partial records are both 404.
func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identityParam(w, r)
	if !ok {
		return
	}
	rec, found, err := h.Store.GetIdentity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "identity not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// State handles GET /api/identities/{id}/state.
func (h *IdentityHandler) State(w http.ResponseWriter, r *http.Request) {
	id, ok := identityParam(w, r)
	if !ok {
		return
	}
	state, err := h.Store.IdentityState(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatePayload{State: state})
}

// Delete handles DELETE /api/identities/{id}.
func (h *IdentityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identityParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteIdentity(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if h.Log != nil {
		h.Log.Warn("identity deleted",
			zap.String("identity", id),
			zap.String("client", middleware.GetClientFromContext(r.Context())))
	}
	w.WriteHeader(http.StatusNoContent)
}

// identityParam returns the {id} path parameter. chi matches against the raw
// path when the request carries escaped separators, so only then is the
// parameter still escaped.
func identityParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
	}
	if id == "" {
		http.Error(w, "missing identity", http.StatusBadRequest)
		return "", false
	}
	return id, true
}
