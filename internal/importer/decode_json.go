package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

// ErrMissingData is returned when a JSON upload lacks the top-level
// "data" object that groups records by entity type.
var ErrMissingData = errors.New("json payload missing top-level data object")

// decodeJSON reads an exported JSON document. Sections whose value is not
// an array are skipped with a warning; unknown section names abort the
// import with schema.ErrUnknownEntityType.
func decodeJSON(r io.Reader, events decodeEvents) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read json payload: %w", err)
	}

	var doc struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("failed to parse json payload: %w", err)
	}
	if doc.Data == nil {
		return ErrMissingData
	}

	for _, name := range schema.EntityTypes() {
		section, ok := doc.Data[name]
		if !ok {
			continue
		}
		delete(doc.Data, name)

		if !startsWithArray(section) {
			events.warn(fmt.Sprintf("section %s is not an array; skipping", name))
			continue
		}

		var records []domain.RawRecord
		if err := json.Unmarshal(section, &records); err != nil {
			return fmt.Errorf("failed to parse section %s: %w", name, err)
		}
		for i, raw := range records {
			events.record(name, raw, i+1)
		}
	}

	for name := range doc.Data {
		return fmt.Errorf("%w: %s", schema.ErrUnknownEntityType, name)
	}
	return nil
}

func startsWithArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
