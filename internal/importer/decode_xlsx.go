package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

// decodeXLSX reads a workbook where each sheet holds one entity type. The
// lower-cased sheet name is the type, the first row the column headers.
func decodeXLSX(r io.Reader, events decodeEvents) error {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	for _, sheet := range file.GetSheetList() {
		name := strings.ToLower(strings.TrimSpace(sheet))
		if !schema.Known(name) {
			return fmt.Errorf("%w: %s", schema.ErrUnknownEntityType, name)
		}

		rows, err := file.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		headers := trimCells(rows[0])
		for i, row := range rows[1:] {
			if isBlankRow(row) {
				continue
			}
			record := make(domain.RawRecord, len(headers))
			for j, header := range headers {
				if header == "" || j >= len(row) || row[j] == "" {
					continue
				}
				record[header] = row[j]
			}
			events.record(name, record, i+2)
		}
	}
	return nil
}
