package export

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/domain"
)

func TestExportJSONPayload(t *testing.T) {
	ownerID := uuid.New()
	source := &stubSource{data: map[string][]domain.RawRecord{
		"profiles": {{"id": "u1", "name": "A"}},
	}}
	exportedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := NewService(source, WithClock(func() time.Time { return exportedAt }))

	result, err := service.Export(context.Background(), ownerID, []string{"profiles"}, FormatJSON)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	if result.Payload == nil {
		t.Fatalf("expected buffered payload for json")
	}
	if result.Payload.ExportDate != exportedAt {
		t.Fatalf("unexpected export date: %v", result.Payload.ExportDate)
	}
	if result.Payload.UserID != ownerID.String() {
		t.Fatalf("unexpected user id: %s", result.Payload.UserID)
	}
	records := result.Payload.Data["profiles"]
	if len(records) != 1 || records[0]["id"] != "u1" || records[0]["name"] != "A" {
		t.Fatalf("unexpected payload data: %#v", result.Payload.Data)
	}
	if source.lastTypes[0] != "profiles" || len(source.lastTypes) != 1 {
		t.Fatalf("unexpected fetch types: %v", source.lastTypes)
	}
}

func TestExportDefaultsToAllEntityTypes(t *testing.T) {
	source := &stubSource{data: map[string][]domain.RawRecord{}}
	service := NewService(source)

	if _, err := service.Export(context.Background(), uuid.New(), nil, FormatJSON); err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	if len(source.lastTypes) != 3 {
		t.Fatalf("expected all registered types requested, got %v", source.lastTypes)
	}
}

func TestExportRejectsUnknownFormatAndType(t *testing.T) {
	source := &stubSource{data: map[string][]domain.RawRecord{}}
	service := NewService(source)

	if _, err := service.Export(context.Background(), uuid.New(), nil, Format("yaml")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := service.Export(context.Background(), uuid.New(), []string{"meal_plans"}, FormatJSON); !errors.Is(err, ErrInvalidDataType) {
		t.Fatalf("expected ErrInvalidDataType, got %v", err)
	}
	if source.fetchCalls != 0 {
		t.Fatalf("expected rejection before any fetch, got %d calls", source.fetchCalls)
	}
}

func TestExportCSVSectionsAndSanitization(t *testing.T) {
	source := &stubSource{data: map[string][]domain.RawRecord{
		"profiles": {
			{"id": "u1", "name": "=2+2", "preferences": map[string]any{"units": "metric"}},
		},
		"workouts": {
			{"id": "w1", "name": "Push Day"},
		},
	}}
	service := NewService(source)

	result, err := service.Export(context.Background(), uuid.New(), []string{"profiles", "workouts"}, FormatCSV)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	defer result.Stream.Close()

	raw, err := io.ReadAll(result.Stream)
	if err != nil {
		t.Fatalf("stream read failed: %v", err)
	}
	text := string(raw)

	profilesAt := strings.Index(text, "dataType:profiles")
	workoutsAt := strings.Index(text, "dataType:workouts")
	if profilesAt < 0 || workoutsAt < 0 || workoutsAt < profilesAt {
		t.Fatalf("expected ordered section markers, got:\n%s", text)
	}
	if !strings.Contains(text, "'=2+2") {
		t.Fatalf("expected formula cell to be sanitized, got:\n%s", text)
	}
	if !strings.Contains(text, `"{""units"":""metric""}"`) {
		t.Fatalf("expected structured field serialized, got:\n%s", text)
	}

	// The profiles section must parse back as marker, header, data row.
	section := text[profilesAt:workoutsAt]
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(section)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("section did not parse as csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected marker, header and data row, got %d rows", len(rows))
	}
	if rows[1][0] != "id" || rows[1][1] != "name" {
		t.Fatalf("unexpected header order: %v", rows[1])
	}
}

func TestExportCSVSkipsEmptySections(t *testing.T) {
	source := &stubSource{data: map[string][]domain.RawRecord{
		"profiles": {},
		"workouts": {{"id": "w1", "name": "Push Day"}},
	}}
	service := NewService(source)

	result, err := service.Export(context.Background(), uuid.New(), []string{"profiles", "workouts"}, FormatCSV)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	defer result.Stream.Close()

	raw, err := io.ReadAll(result.Stream)
	if err != nil {
		t.Fatalf("stream read failed: %v", err)
	}
	text := string(raw)
	if strings.Contains(text, "dataType:profiles") {
		t.Fatalf("did not expect empty profiles section:\n%s", text)
	}
	if strings.HasPrefix(text, "\n") {
		t.Fatalf("did not expect separator before first section:\n%q", text)
	}
}

func TestExportXLSXProducesWorkbook(t *testing.T) {
	source := &stubSource{data: map[string][]domain.RawRecord{
		"profiles": {{"id": "u1", "name": "A", "age": int64(30)}},
	}}
	service := NewService(source)

	result, err := service.Export(context.Background(), uuid.New(), []string{"profiles"}, FormatXLSX)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	defer result.Stream.Close()

	raw, err := io.ReadAll(result.Stream)
	if err != nil {
		t.Fatalf("stream read failed: %v", err)
	}
	// XLSX files are zip archives.
	if len(raw) < 4 || raw[0] != 'P' || raw[1] != 'K' {
		t.Fatalf("expected zip container, got % x", raw[:4])
	}
}

func TestExportPDFProducesDocument(t *testing.T) {
	source := &stubSource{data: map[string][]domain.RawRecord{
		"profiles": {{"id": "u1", "name": "A", "bio": nil}},
	}}
	service := NewService(source)

	result, err := service.Export(context.Background(), uuid.New(), []string{"profiles"}, FormatPDF)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	defer result.Stream.Close()

	raw, err := io.ReadAll(result.Stream)
	if err != nil {
		t.Fatalf("stream read failed: %v", err)
	}
	if !strings.HasPrefix(string(raw), "%PDF") {
		t.Fatalf("expected pdf header, got %q", string(raw[:8]))
	}
}

func TestExportPropagatesFetchError(t *testing.T) {
	boom := errors.New("database gone")
	source := &stubSource{err: boom}
	service := NewService(source)

	if _, err := service.Export(context.Background(), uuid.New(), []string{"profiles"}, FormatCSV); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

type stubSource struct {
	data       map[string][]domain.RawRecord
	err        error
	lastTypes  []string
	fetchCalls int
}

func (s *stubSource) Fetch(ctx context.Context, ownerID uuid.UUID, entityTypes []string) (map[string][]domain.RawRecord, error) {
	s.fetchCalls++
	s.lastTypes = append([]string(nil), entityTypes...)
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}
