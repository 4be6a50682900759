package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	middleware "github.com/markdave123-py/Vivid/internal/api/middlewares"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// contextID reads the interaction-context id; a missing one means the route
// was mounted without the session middleware.
func contextID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	id, ok := middleware.ContextID(r.Context())
	if !ok {
		logger.Error("request reached a session route without a context id", zap.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, "session context missing")
	}
	return id, ok
}
