package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/core/focus"
	"github.com/markdave123-py/Vivid/internal/core/profiles"
	"github.com/markdave123-py/Vivid/internal/core/session"
	"github.com/markdave123-py/Vivid/internal/models"
	"github.com/markdave123-py/Vivid/internal/services"
	"github.com/markdave123-py/Vivid/internal/validation"
)

// multipartOverhead leaves room for boundaries and part headers around a
// video of the maximum accepted size.
const multipartOverhead = 1 << 20

type SessionHandler struct {
	workspaces *services.Workspaces
	logger     *zap.Logger
}

func NewSessionHandler(ws *services.Workspaces, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{workspaces: ws, logger: logger}
}

type sessionResponse struct {
	services.View
	Notice string `json:"notice,omitempty"`
}

type refineRequest struct {
	Message string `json:"message"`
}

type detailRequest struct {
	Level string `json:"level"`
}

type focusRequest struct {
	Label string `json:"label"`
}

type selectRequest struct {
	Selected bool `json:"selected"`
}

func (h *SessionHandler) service(w http.ResponseWriter, r *http.Request) (*services.DescribeService, bool) {
	id, ok := contextID(w, r, h.logger)
	if !ok {
		return nil, false
	}
	return h.workspaces.Get(id), true
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
}

// UploadVideo reads the multipart "file" field and stages it as the session video.
func (h *SessionHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	limit := int64(validation.MaxVideoSize + multipartOverhead)
	if r.ContentLength > limit {
		h.reject(w, r, svc, validation.ErrFileTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.reject(w, r, svc, validation.ErrFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = validation.GuessContentType(header.Filename)
	}

	err = svc.SelectVideo(r.Context(), header.Filename, contentType, header.Size, file)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
	case errors.Is(err, validation.ErrInvalidFileType), errors.Is(err, validation.ErrFileTooLarge):
		writeJSON(w, http.StatusUnprocessableEntity, sessionResponse{View: svc.View()})
	default:
		h.writeSessionError(w, err)
	}
}

func (h *SessionHandler) reject(w http.ResponseWriter, r *http.Request, svc *services.DescribeService, cause error) {
	if err := svc.RejectVideo(r.Context(), cause); errors.Is(err, session.ErrBusy) {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, sessionResponse{View: svc.View()})
}

func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	_, err := svc.Generate(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
	case errors.Is(err, session.ErrGenerationFailed):
		writeJSON(w, http.StatusBadGateway, sessionResponse{View: svc.View()})
	default:
		h.writeSessionError(w, err)
	}
}

func (h *SessionHandler) Refine(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	var req refineRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := svc.Refine(r.Context(), req.Message)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
	case errors.Is(err, session.ErrRefinementFailed):
		writeJSON(w, http.StatusOK, sessionResponse{View: svc.View(), Notice: err.Error()})
	default:
		h.writeSessionError(w, err)
	}
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	svc.Reset(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
}

func (h *SessionHandler) SetDetail(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	var req detailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	level, err := models.ParseDetailLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc.SetDetailLevel(level)
	writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
}

func (h *SessionHandler) AddFocus(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	var req focusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeError(w, http.StatusBadRequest, "label is empty")
		return
	}
	svc.AddFocus(req.Label)
	writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
}

func (h *SessionHandler) RemoveFocus(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	label, err := url.PathUnescape(chi.URLParam(r, "label"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid label")
		return
	}
	if !svc.RemoveFocus(label) {
		writeError(w, http.StatusNotFound, "focus label not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
}

func (h *SessionHandler) SelectProfile(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := svc.SelectProfile(chi.URLParam(r, "id"), req.Selected); err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "could not update selection")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{View: svc.View()})
}

func (h *SessionHandler) FocusSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": focus.Suggested})
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrEmptyMessage):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("session request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
