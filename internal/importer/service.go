package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"strings"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/repository"
	"github.com/fitsync/fitsync/pkg/validator"
)

// Media types accepted for upload.
const (
	MediaTypeJSON = "application/json"
	MediaTypeCSV  = "text/csv"
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file declares a
	// media type the engine cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMissingOwner is returned when no authenticated user is supplied.
	ErrMissingOwner = errors.New("owner id is required")
)

// Upload describes one uploaded transfer file.
type Upload struct {
	FileName  string
	MediaType string
	Data      io.Reader
}

// Service decodes uploads, validates rows, and writes accepted records
// through the batch writer. Failures never abort the remaining rows; the
// result carries per-row accounting instead.
type Service struct {
	batch     *BatchWriter
	logs      repository.TransferLogRepository
	validator *validator.RecordValidator
	errorCap  int
}

// Option customizes the import service.
type Option func(*Service)

// WithErrorCap overrides how many diagnostics a result retains before
// truncating.
func WithErrorCap(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.errorCap = limit
		}
	}
}

// NewService creates an import service writing through the given store.
// The transfer log repository may be nil; row failures are then only
// surfaced in the result.
func NewService(store repository.RecordStore, logs repository.TransferLogRepository, opts ...Option) *Service {
	s := &Service{
		batch:     NewBatchWriter(store),
		logs:      logs,
		validator: validator.NewRecordValidator(),
		errorCap:  domain.DefaultDiagnosticLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import consumes one upload for the given owner. Decoder failures (an
// unreadable file, an unknown entity type, a missing data envelope) are
// returned as errors; row-level problems are counted in the result.
func (s *Service) Import(ctx context.Context, ownerID uuid.UUID, upload Upload) (domain.TransferResult, error) {
	if ownerID == uuid.Nil {
		return domain.TransferResult{}, ErrMissingOwner
	}

	decode, err := decoderFor(upload.MediaType)
	if err != nil {
		return domain.TransferResult{}, err
	}

	result := domain.TransferResult{Errors: []string{}}
	diags := domain.NewDiagnostics(s.errorCap)
	pending := make(map[string][]domain.Record)
	var pendingOrder []string

	events := decodeEvents{
		record: func(entityType string, raw domain.RawRecord, row int) {
			result.Total++
			res := s.validator.Validate(entityType, raw)
			for _, warning := range res.Warnings {
				log.Printf("[import] %s row %d: %s: %s", entityType, row, warning.Field, warning.Message)
			}
			if !res.IsValid {
				result.Failed++
				message := validator.FormatFailure(entityType, res.Errors)
				diags.Add(message)
				s.logFailure(ctx, ownerID, entityType, upload.FileName, row, message)
				return
			}
			if _, seen := pending[entityType]; !seen {
				pendingOrder = append(pendingOrder, entityType)
			}
			pending[entityType] = append(pending[entityType], res.Record)
		},
		skip: func(message string, row int) {
			result.Total++
			result.Failed++
			diags.Add(message)
			s.logFailure(ctx, ownerID, "", upload.FileName, row, message)
		},
		warn: func(message string) {
			diags.Add(message)
		},
	}

	if err := decode(upload.Data, events); err != nil {
		return domain.TransferResult{}, err
	}

	for _, entityType := range pendingOrder {
		outcome := s.batch.Write(ctx, entityType, pending[entityType], ownerID)
		result.Successful += outcome.Successful
		result.Failed += outcome.Failed
		for _, message := range outcome.Messages {
			diags.Add(message)
		}
		if outcome.Err != nil {
			log.Printf("[import] batch write for %s failed: %v", entityType, outcome.Err)
			s.logFailure(ctx, ownerID, entityType, upload.FileName, 0, outcome.Err.Error())
		}
	}

	result.Errors = diags.Messages()
	log.Printf("[import] %s: total=%d successful=%d failed=%d", upload.FileName, result.Total, result.Successful, result.Failed)
	return result, nil
}

func (s *Service) logFailure(ctx context.Context, ownerID uuid.UUID, entityType, fileName string, row int, message string) {
	if s.logs == nil {
		return
	}
	entry := domain.TransferLogEntry{
		UserID:       ownerID,
		EntityType:   entityType,
		FileName:     fileName,
		ErrorMessage: message,
	}
	if row > 0 {
		entry.RowNumber = &row
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		log.Printf("[import] failed to record transfer log: %v", err)
	}
}

type decodeFunc func(io.Reader, decodeEvents) error

func decoderFor(mediaType string) (decodeFunc, error) {
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		parsed = strings.ToLower(strings.TrimSpace(mediaType))
	}
	switch parsed {
	case MediaTypeJSON:
		return decodeJSON, nil
	case MediaTypeCSV:
		return decodeCSV, nil
	case MediaTypeXLSX:
		return decodeXLSX, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
	}
}
