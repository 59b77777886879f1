package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fitsync/fitsync/internal/auth"
	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

// Handler exposes imports as an HTTP upload endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

type importResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Data    domain.TransferResult `json:"data"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: "error", Message: "not authenticated"})
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: fmt.Sprintf("invalid form data: %v", err)})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: fmt.Sprintf("file required: %v", err)})
		return
	}
	defer file.Close()

	// Spool the upload to disk so decoders can stream it without holding
	// the whole body in memory alongside the multipart buffers.
	spool, err := os.CreateTemp("", "fitsync-upload-*")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: "failed to store upload"})
		return
	}
	defer func() {
		if err := spool.Close(); err != nil {
			log.Printf("[import] failed to close spool file %s: %v", spool.Name(), err)
		}
		if err := os.Remove(spool.Name()); err != nil {
			log.Printf("[import] failed to remove spool file %s: %v", spool.Name(), err)
		}
	}()
	if _, err := io.Copy(spool, file); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: fmt.Sprintf("failed to read file: %v", err)})
		return
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: "failed to store upload"})
		return
	}

	upload := Upload{
		FileName:  header.Filename,
		MediaType: uploadMediaType(header.Header.Get("Content-Type"), header.Filename),
		Data:      spool,
	}

	result, err := h.service.Import(r.Context(), userID, upload)
	if err != nil {
		status := http.StatusInternalServerError
		if isClientError(err) {
			status = http.StatusBadRequest
		}
		log.Printf("[import] %s rejected: %v", header.Filename, err)
		writeJSON(w, status, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Status:  "success",
		Message: fmt.Sprintf("imported %d of %d records", result.Successful, result.Total),
		Data:    result,
	})
}

// uploadMediaType resolves the declared content type, falling back to the
// file extension for clients that upload with application/octet-stream.
func uploadMediaType(declared, fileName string) string {
	parsed, _, err := mime.ParseMediaType(declared)
	if err == nil && parsed != "" && parsed != "application/octet-stream" {
		return parsed
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		return MediaTypeJSON
	case ".csv":
		return MediaTypeCSV
	case ".xlsx":
		return MediaTypeXLSX
	default:
		return declared
	}
}

func isClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMissingData) ||
		errors.Is(err, ErrMissingOwner) ||
		errors.Is(err, schema.ErrUnknownEntityType) ||
		strings.Contains(err.Error(), "failed to parse")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
