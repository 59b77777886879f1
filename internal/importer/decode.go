// Package importer decodes uploaded transfer files, validates every row
// against its entity schema, and persists normalized records in bounded
// upsert batches with per-row failure accounting.
package importer

import (
	"github.com/fitsync/fitsync/internal/domain"
)

// decodeEvents is the contract between a format decoder and the import
// orchestrator. Decoders call record once per raw row in input order so
// validation runs inline without materializing the upload; skip marks a
// row counted as failed without producing a record; warn records a
// diagnostic that counts nothing.
type decodeEvents struct {
	record func(entityType string, raw domain.RawRecord, row int)
	skip   func(message string, row int)
	warn   func(message string)
}
