package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fitsync/fitsync/internal/codec"
	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// decodeCSV streams a multi-section CSV upload row by row. A section
// marker row switches the active entity type, the row after it carries
// the column headers, and every following row is a record until the next
// marker. Rows seen before any marker cannot be attributed to a type and
// are counted as failures.
func decodeCSV(r io.Reader, events decodeEvents) error {
	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	var (
		currentType string
		headers     []string
		rowNum      int
	)

	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read csv row: %w", err)
		}
		rowNum++

		if isBlankRow(row) {
			continue
		}
		if name, ok := markerRow(row); ok {
			if !schema.Known(name) {
				return fmt.Errorf("%w: %s", schema.ErrUnknownEntityType, name)
			}
			currentType = name
			headers = nil
			continue
		}
		if currentType == "" {
			events.skip("row has no type context", rowNum)
			continue
		}
		if headers == nil {
			headers = trimCells(row)
			continue
		}

		record := make(domain.RawRecord, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(row) {
				continue
			}
			// Empty cells mean the field is absent, not empty-string.
			if row[i] == "" {
				continue
			}
			record[header] = row[i]
		}
		events.record(currentType, record, rowNum)
	}
	return nil
}

// markerRow reports whether the row is a section marker. Trailing empty
// cells are tolerated so spreadsheets re-saved as CSV keep working.
func markerRow(row []string) (string, bool) {
	cells := nonEmptyCells(row)
	if len(cells) != 1 {
		return "", false
	}
	return codec.ParseSectionMarker(cells[0])
}

func isBlankRow(row []string) bool {
	return len(nonEmptyCells(row)) == 0
}

func nonEmptyCells(row []string) []string {
	var cells []string
	for _, cell := range row {
		if trimmed := strings.TrimSpace(cell); trimmed != "" {
			cells = append(cells, trimmed)
		}
	}
	return cells
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
