package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/auth"
	"github.com/fitsync/fitsync/internal/domain"
)

func multipartUpload(t *testing.T, fileName, contentType, payload string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write([]byte(payload)); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestHandlerImportsUpload(t *testing.T) {
	store := &stubStore{}
	handler := NewHTTPHandler(NewService(store, nil))

	payload := "dataType:profiles\nid,name\n" + uuid.New().String() + ",Alice\n"
	body, contentType := multipartUpload(t, "backup.csv", "text/csv", payload)

	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.ContextWithUserID(context.Background(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Status  string                `json:"status"`
		Message string                `json:"message"`
		Data    domain.TransferResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("response did not parse: %v", err)
	}
	if response.Status != "success" {
		t.Fatalf("unexpected status: %s", response.Status)
	}
	if response.Data.Total != 1 || response.Data.Successful != 1 || response.Data.Failed != 0 {
		t.Fatalf("unexpected result: %+v", response.Data)
	}
	if len(store.calls) != 1 {
		t.Fatalf("expected one batch write, got %d", len(store.calls))
	}
}

func TestHandlerRejectsUnauthenticatedUpload(t *testing.T) {
	handler := NewHTTPHandler(NewService(&stubStore{}, nil))

	body, contentType := multipartUpload(t, "backup.csv", "text/csv", "dataType:profiles\n")
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandlerRejectsUnsupportedUpload(t *testing.T) {
	handler := NewHTTPHandler(NewService(&stubStore{}, nil))

	body, contentType := multipartUpload(t, "backup.yaml", "application/yaml", "profiles: []")
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.ContextWithUserID(context.Background(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
