// Package export assembles a user's records and encodes them into one of
// the supported download formats. JSON is returned as a buffered payload;
// csv, xlsx and pdf are returned as live stream handles.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/repository"
	"github.com/fitsync/fitsync/internal/schema"
)

// Format identifies a supported export representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var (
	// ErrUnsupportedFormat rejects a format outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrInvalidDataType rejects an entity type the registry does not know.
	ErrInvalidDataType = errors.New("invalid data type")
)

// ContentType returns the response media type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Ext returns the download file extension for the format.
func (f Format) Ext() string {
	return string(f)
}

func (f Format) valid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatXLSX, FormatPDF:
		return true
	}
	return false
}

// JSONPayload wraps the fetched record mapping for buffered JSON export.
type JSONPayload struct {
	ExportDate time.Time                     `json:"exportDate"`
	UserID     string                        `json:"userId"`
	Data       map[string][]domain.RawRecord `json:"data"`
}

// Export is the outcome of one export call: a buffered payload for JSON,
// a live stream handle for the streamed formats. Errors raised after the
// stream handle exists are delivered on the handle itself.
type Export struct {
	Format  Format
	Payload *JSONPayload
	Stream  io.ReadCloser
}

// Service orchestrates Record Source -> Format Encoder.
type Service struct {
	source repository.RecordSource
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock substitutes the export timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the export orchestrator.
func NewService(source repository.RecordSource, opts ...Option) *Service {
	service := &Service{
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Export validates the request, fetches the owner's records once, and
// encodes them. Unknown formats and data types are user errors rejected
// before any storage work. An empty dataTypes list means every registered
// entity type. Section ordering in streamed output follows the requested
// dataTypes order.
func (s *Service) Export(ctx context.Context, ownerID uuid.UUID, dataTypes []string, format Format) (*Export, error) {
	if ownerID == uuid.Nil {
		return nil, errors.New("owner id is required")
	}
	if !format.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if len(dataTypes) == 0 {
		dataTypes = schema.EntityTypes()
	}
	for _, dataType := range dataTypes {
		if !schema.Known(dataType) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDataType, dataType)
		}
	}

	data, err := s.source.Fetch(ctx, ownerID, dataTypes)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return &Export{Format: format, Payload: &JSONPayload{
			ExportDate: s.now().UTC(),
			UserID:     ownerID.String(),
			Data:       data,
		}}, nil
	case FormatCSV:
		return &Export{Format: format, Stream: encodeCSV(dataTypes, data)}, nil
	case FormatXLSX:
		stream, err := encodeXLSX(dataTypes, data)
		if err != nil {
			return nil, err
		}
		return &Export{Format: format, Stream: stream}, nil
	case FormatPDF:
		return &Export{Format: format, Stream: encodePDF(dataTypes, data, s.now().UTC())}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

// sectionHeaders derives column order for one section: schema declaration
// order for fields present in the first record, then any remaining keys in
// stable lexical order.
func sectionHeaders(entitySchema schema.EntitySchema, first domain.RawRecord) []string {
	headers := make([]string, 0, len(first))
	seen := make(map[string]bool, len(first))
	for _, name := range entitySchema.FieldNames() {
		if _, ok := first[name]; ok {
			headers = append(headers, name)
			seen[name] = true
		}
	}
	extras := make([]string, 0)
	for key := range first {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	if len(extras) > 1 {
		sortStrings(extras)
	}
	return append(headers, extras...)
}

func sortStrings(values []string) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}

// formatValue renders one cell for text-oriented output.
func formatValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		return v.String()
	case float32, float64, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%v", v)
	case []byte:
		return string(v)
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
