package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/domain"
)

// RecordSource fetches raw entity records for one owner across entity
// types. Implementations scope every read to the owner identity.
type RecordSource interface {
	Fetch(ctx context.Context, ownerID uuid.UUID, entityTypes []string) (map[string][]domain.RawRecord, error)
}

// RecordStore issues one bounded upsert statement per call. Rows are
// positional against columns; conflictKey names the deduplication columns.
type RecordStore interface {
	UpsertBatch(ctx context.Context, table string, columns []string, conflictKey []string, rows [][]any) error
}

// TransferLogRepository stores per-row import errors for observability.
type TransferLogRepository interface {
	Record(ctx context.Context, entry domain.TransferLogEntry) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.TransferLogEntry, error)
}
