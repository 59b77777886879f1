package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitsync/fitsync/internal/domain"
)

type transferLogRepository struct {
	pool *pgxpool.Pool
}

// NewTransferLogRepository wires a repository backed by pgxpool.
func NewTransferLogRepository(pool *pgxpool.Pool) TransferLogRepository {
	return &transferLogRepository{pool: pool}
}

func (r *transferLogRepository) Record(ctx context.Context, entry domain.TransferLogEntry) error {
	if r.pool == nil {
		return fmt.Errorf("transfer log repository not initialized")
	}

	var rowNumber any
	if entry.RowNumber != nil {
		rowNumber = *entry.RowNumber
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO transfer_logs (user_id, entity_type, file_name, row_number, error_message)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.UserID,
		entry.EntityType,
		entry.FileName,
		rowNumber,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record transfer log: %w", err)
	}

	return nil
}

func (r *transferLogRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.TransferLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("transfer log repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, user_id, entity_type, file_name, row_number, error_message, created_at
		 FROM transfer_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer logs: %w", err)
	}
	defer rows.Close()

	entries := []domain.TransferLogEntry{}
	for rows.Next() {
		var entry domain.TransferLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.EntityType,
			&entry.FileName,
			&entry.RowNumber,
			&entry.ErrorMessage,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return entries, nil
}
