// Package http exposes the credential store to UI collaborators over an
// mTLS-protected JSON API.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/seedkeeper/internal/middleware"
	"github.com/atinyakov/seedkeeper/internal/mnemonic"
	"github.com/atinyakov/seedkeeper/internal/models"
	"go.uber.org/zap"
)

// WalletService defines the primary wallet secret operations required by the WalletHandler.
type WalletService interface {
	ImportSeed(ctx context.Context, seed []byte) error
	ExportSeed(ctx context.Context) ([]byte, error)
	DeleteSeed(ctx context.Context) error

	ImportPhrase(ctx context.Context, phrase string) error
	ExportPhrase(ctx context.Context) (string, error)
	DeletePhrase(ctx context.Context) error

	ImportBirthday(ctx context.Context, height models.BlockHeight) error
	ExportBirthday(ctx context.Context) (models.BlockHeight, error)
	DeleteBirthday(ctx context.Context) error

	SaveKeys(ctx context.Context, keys []string) error
	GetKeys(ctx context.Context) ([]string, error)
	DeleteKeys(ctx context.Context) error

	WipeAll(ctx context.Context) (int, error)
}

// SeedPayload is the JSON body of seed requests; the seed travels base64 encoded.
type SeedPayload struct {
	Seed []byte `json:"seed"`
}

// PhrasePayload is the JSON body of phrase requests.
type PhrasePayload struct {
	Phrase string `json:"phrase"`
}

// BirthdayPayload is the JSON body of birthday requests.
type BirthdayPayload struct {
	Height models.BlockHeight `json:"height"`
}

// KeysPayload is the JSON body of key list requests.
type KeysPayload struct {
	Keys []string `json:"keys"`
}

// WipePayload is the JSON response of a wipe.
type WipePayload struct {
	Removed int `json:"removed"`
}

// WalletHandler handles HTTP requests for the primary wallet secrets.
type WalletHandler struct {
	Store WalletService
	Log   *zap.Logger
	// ValidPhrase checks mnemonic phrases before import. mnemonic.IsValid when nil.
	ValidPhrase func(string) bool
}

// ImportSeed handles POST /api/wallet/seed.
func (h *WalletHandler) ImportSeed(w http.ResponseWriter, r *http.Request) {
	var req SeedPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Seed == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Store.ImportSeed(r.Context(), req.Seed); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ExportSeed handles GET /api/wallet/seed.
func (h *WalletHandler) ExportSeed(w http.ResponseWriter, r *http.Request) {
	seed, err := h.Store.ExportSeed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit(r, "seed exported")
	writeJSON(w, http.StatusOK, SeedPayload{Seed: seed})
}

// DeleteSeed handles DELETE /api/wallet/seed.
func (h *WalletHandler) DeleteSeed(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "seed deleted", h.Store.DeleteSeed)
}

// ImportPhrase handles POST /api/wallet/phrase. The phrase must pass the
// mnemonic check before it reaches the store.
func (h *WalletHandler) ImportPhrase(w http.ResponseWriter, r *http.Request) {
	var req PhrasePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	phrase := mnemonic.Normalize(req.Phrase)
	if !h.validPhrase(phrase) {
		http.Error(w, "invalid mnemonic phrase", http.StatusBadRequest)
		return
	}
	if err := h.Store.ImportPhrase(r.Context(), phrase); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ExportPhrase handles GET /api/wallet/phrase.
func (h *WalletHandler) ExportPhrase(w http.ResponseWriter, r *http.Request) {
	phrase, err := h.Store.ExportPhrase(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit(r, "phrase exported")
	writeJSON(w, http.StatusOK, PhrasePayload{Phrase: phrase})
}

// DeletePhrase handles DELETE /api/wallet/phrase.
func (h *WalletHandler) DeletePhrase(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "phrase deleted", h.Store.DeletePhrase)
}

// ImportBirthday handles POST /api/wallet/birthday.
func (h *WalletHandler) ImportBirthday(w http.ResponseWriter, r *http.Request) {
	var req BirthdayPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Store.ImportBirthday(r.Context(), req.Height); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ExportBirthday handles GET /api/wallet/birthday.
func (h *WalletHandler) ExportBirthday(w http.ResponseWriter, r *http.Request) {
	height, err := h.Store.ExportBirthday(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BirthdayPayload{Height: height})
}

// DeleteBirthday handles DELETE /api/wallet/birthday.
func (h *WalletHandler) DeleteBirthday(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "birthday deleted", h.Store.DeleteBirthday)
}

// SaveKeys handles PUT /api/wallet/keys.
func (h *WalletHandler) SaveKeys(w http.ResponseWriter, r *http.Request) {
	var req KeysPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Store.SaveKeys(r.Context(), req.Keys); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetKeys handles GET /api/wallet/keys. A list that was never saved is returned empty.
func (h *WalletHandler) GetKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Store.GetKeys(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, KeysPayload{Keys: keys})
}

// DeleteKeys handles DELETE /api/wallet/keys.
func (h *WalletHandler) DeleteKeys(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "key list deleted", h.Store.DeleteKeys)
}

// Wipe handles POST /api/wallet/wipe. The caller is expected to have asked
// the user for confirmation.
func (h *WalletHandler) Wipe(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Store.WipeAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit(r, "wallet wiped", zap.Int("removed", removed))
	writeJSON(w, http.StatusOK, WipePayload{Removed: removed})
}

func (h *WalletHandler) remove(w http.ResponseWriter, r *http.Request, msg string, del func(context.Context) error) {
	if err := del(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.audit(r, msg)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WalletHandler) audit(r *http.Request, msg string, fields ...zap.Field) {
	if h.Log == nil {
		return
	}
	fields = append(fields, zap.String("client", middleware.GetClientFromContext(r.Context())))
	h.Log.Warn(msg, fields...)
}

func (h *WalletHandler) validPhrase(phrase string) bool {
	if h.ValidPhrase != nil {
		return h.ValidPhrase(phrase)
	}
	return mnemonic.IsValid(phrase)
}
