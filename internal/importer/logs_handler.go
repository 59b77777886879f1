package importer

import (
	"net/http"
	"strconv"

	"github.com/fitsync/fitsync/internal/auth"
	"github.com/fitsync/fitsync/internal/repository"
)

// LogsHandler exposes the caller's recent import row failures.
type LogsHandler struct {
	logs repository.TransferLogRepository
}

// NewLogsHandler wraps the transfer log repository with a GET endpoint.
func NewLogsHandler(logs repository.TransferLogRepository) http.Handler {
	return &LogsHandler{logs: logs}
}

func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: "error", Message: "not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.logs.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
