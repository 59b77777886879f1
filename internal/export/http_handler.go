package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/fitsync/fitsync/internal/auth"
)

// Handler exposes export as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

type exportPayload struct {
	Format    string   `json:"format"`
	DataTypes []string `json:"dataTypes"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var payload exportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}

	format := Format(strings.ToLower(strings.TrimSpace(payload.Format)))
	result, err := h.service.Export(r.Context(), userID, payload.DataTypes, format)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrInvalidDataType) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	if result.Payload != nil {
		writeJSON(w, http.StatusOK, result.Payload)
		return
	}

	defer result.Stream.Close()
	filename := fmt.Sprintf("fitsync-export-%s.%s", h.service.now().UTC().Format("20060102-150405"), result.Format.Ext())
	w.Header().Set("Content-Type", result.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	written, err := io.Copy(w, result.Stream)
	if err != nil {
		log.Printf("[export] stream failed after %d bytes: %v", written, err)
		if written == 0 {
			// Nothing sent yet, the client still gets a clean error.
			w.Header().Del("Content-Disposition")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// Bytes are already on the wire; abort so the client sees a broken
		// download instead of a silently truncated, valid-looking file.
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
