package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/repository"
	"github.com/fitsync/fitsync/internal/schema"
)

// defaultChunkSize bounds how many rows travel in one upsert statement.
const defaultChunkSize = 100

// BatchWriter persists validated records through a RecordStore in fixed
// size chunks. Chunks are written sequentially; a failed chunk marks all
// of its records failed without aborting the chunks that follow.
type BatchWriter struct {
	store     repository.RecordStore
	chunkSize int
}

// BatchOption customizes a BatchWriter.
type BatchOption func(*BatchWriter)

// WithChunkSize overrides the number of records per upsert statement.
func WithChunkSize(size int) BatchOption {
	return func(w *BatchWriter) {
		if size > 0 {
			w.chunkSize = size
		}
	}
}

// NewBatchWriter creates a BatchWriter backed by the given store.
func NewBatchWriter(store repository.RecordStore, opts ...BatchOption) *BatchWriter {
	w := &BatchWriter{store: store, chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write upserts the records for one entity type, stamping every row with
// the owning user before it is persisted. Profiles are keyed by the owner
// directly; every other type carries the owner in user_id.
func (w *BatchWriter) Write(ctx context.Context, entityType string, records []domain.Record, ownerID uuid.UUID) domain.BatchOutcome {
	var outcome domain.BatchOutcome
	if len(records) == 0 {
		return outcome
	}

	entity, err := schema.For(entityType)
	if err != nil {
		outcome.Failed = len(records)
		outcome.Err = err
		outcome.Messages = append(outcome.Messages, fmt.Sprintf("batch error: %s", entityType))
		return outcome
	}
	columns := entity.FieldNames()

	for start := 0; start < len(records); start += w.chunkSize {
		end := start + w.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		rows := make([][]any, 0, len(chunk))
		for _, record := range chunk {
			record.Fields[entity.OwnerField] = ownerID.String()
			row := make([]any, len(columns))
			for i, column := range columns {
				row[i] = record.Fields[column]
			}
			rows = append(rows, row)
		}

		if err := w.store.UpsertBatch(ctx, entity.Table, columns, entity.ConflictKey, rows); err != nil {
			outcome.Failed += len(chunk)
			outcome.Err = err
			outcome.Messages = append(outcome.Messages,
				fmt.Sprintf("batch error: %s", entityType),
				fmt.Sprintf("database error reported by batch insert: %v", err))
			continue
		}
		outcome.Successful += len(chunk)
	}
	return outcome
}
