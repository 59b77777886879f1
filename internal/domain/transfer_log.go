package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferLogEntry records one import-time row failure for observability.
type TransferLogEntry struct {
	ID           int64     `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	EntityType   string    `json:"entity_type"`
	FileName     string    `json:"file_name"`
	RowNumber    *int      `json:"row_number,omitempty"`
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
