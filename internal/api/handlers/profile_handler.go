package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/core/profiles"
	"github.com/markdave123-py/Vivid/internal/models"
)

type ProfileHandler struct {
	store  *profiles.Store
	logger *zap.Logger
}

func NewProfileHandler(store *profiles.Store, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{store: store, logger: logger}
}

type profilesResponse struct {
	Profiles []models.Profile `json:"profiles"`
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profilesResponse{Profiles: h.store.List()})
}

// Create always issues a fresh id, ignoring any id in the body.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = ""
	h.save(w, r, p, http.StatusCreated)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.Get(id); !ok {
		writeError(w, http.StatusNotFound, profiles.ErrNotFound.Error())
		return
	}
	var p models.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = id
	h.save(w, r, p, http.StatusOK)
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Remove(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, profiles.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("delete profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not delete profile")
	}
}

func (h *ProfileHandler) save(w http.ResponseWriter, r *http.Request, p models.Profile, status int) {
	saved, err := h.store.Upsert(r.Context(), p)
	switch {
	case err == nil:
		writeJSON(w, status, saved)
	case errors.Is(err, profiles.ErrIncompleteProfile):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("save profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save profile")
	}
}
