package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/models"
	"github.com/markdave123-py/Vivid/internal/services"
)

type PreferencesHandler struct {
	prefs  *services.PreferenceService
	logger *zap.Logger
}

func NewPreferencesHandler(prefs *services.PreferenceService, logger *zap.Logger) *PreferencesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferencesHandler{prefs: prefs, logger: logger}
}

type themeBody struct {
	Theme models.Theme `json:"theme"`
}

func (h *PreferencesHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.prefs.Theme(r.Context())
	if err != nil {
		h.logger.Error("load theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load theme")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}

func (h *PreferencesHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeBody
	if !decodeJSON(w, r, &req) {
		return
	}
	theme, err := models.ParseTheme(string(req.Theme))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.prefs.SetTheme(r.Context(), theme); err != nil {
		h.logger.Error("save theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save theme")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}
