package repository

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

// RecordRepository implements RecordSource and RecordStore against a
// pgx connection pool. Table and column names are never taken from user
// input; they come from the static schema registry.
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository creates a record repository backed by pgxpool.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// Fetch reads the owner's records for each requested entity type. Reads
// run concurrently; unknown entity types are logged and omitted, and a
// failing read fails the whole call naming the entity type. Types with no
// matching rows contribute an empty list, not an omission.
func (r *RecordRepository) Fetch(ctx context.Context, ownerID uuid.UUID, entityTypes []string) (map[string][]domain.RawRecord, error) {
	result := make(map[string][]domain.RawRecord, len(entityTypes))
	var mu sync.Mutex

	group, ctx := errgroup.WithContext(ctx)
	for _, entityType := range entityTypes {
		entitySchema, err := schema.For(entityType)
		if err != nil {
			log.Printf("[export] skipping unknown entity type %q", entityType)
			continue
		}
		group.Go(func() error {
			records, err := r.fetchType(ctx, ownerID, entitySchema)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", entitySchema.Name, err)
			}
			mu.Lock()
			result[entitySchema.Name] = records
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RecordRepository) fetchType(ctx context.Context, ownerID uuid.UUID, entitySchema schema.EntitySchema) ([]domain.RawRecord, error) {
	columns := entitySchema.FieldNames()
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		strings.Join(columns, ", "), entitySchema.Table, entitySchema.OwnerField,
	)

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", entitySchema.Table, err)
	}
	defer rows.Close()

	records := []domain.RawRecord{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		record := make(domain.RawRecord, len(columns))
		for i, column := range columns {
			if i < len(values) {
				record[column] = values[i]
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return records, nil
}

// UpsertBatch writes one chunk of rows in a single statement, deduplicating
// on conflictKey. Every updatable column takes the incoming value.
func (r *RecordRepository) UpsertBatch(ctx context.Context, table string, columns []string, conflictKey []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	arg := 1
	for _, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row has %d values, expected %d", len(row), len(columns))
		}
		marks := make([]string, len(columns))
		for i, value := range row {
			marks[i] = fmt.Sprintf("$%d", arg)
			args = append(args, value)
			arg++
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
	}

	conflict := map[string]bool{}
	for _, key := range conflictKey {
		conflict[key] = true
	}
	updates := make([]string, 0, len(columns))
	for _, column := range columns {
		if conflict[column] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflictKey, ", "),
		strings.Join(updates, ", "),
	)

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}
