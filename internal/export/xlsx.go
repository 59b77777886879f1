package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fitsync/fitsync/internal/codec"
	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

// encodeXLSX builds one sheet per non-empty entity type with a styled
// header row derived from the first record. The workbook is assembled
// synchronously so setup failures reject the call; the write to the
// returned handle is asynchronous and any error there is delivered as an
// error on the handle, since the call has already returned it.
func encodeXLSX(dataTypes []string, data map[string][]domain.RawRecord) (io.ReadCloser, error) {
	file := excelize.NewFile()

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	wroteSheet := false
	for _, dataType := range dataTypes {
		records := data[dataType]
		if len(records) == 0 {
			continue
		}
		entitySchema, err := schema.For(dataType)
		if err != nil {
			return nil, err
		}
		if _, err := file.NewSheet(dataType); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", dataType, err)
		}
		writer, err := file.NewStreamWriter(dataType)
		if err != nil {
			return nil, fmt.Errorf("open stream writer for %s: %w", dataType, err)
		}

		headers := sectionHeaders(entitySchema, records[0])
		headerCells := make([]any, len(headers))
		for i, header := range headers {
			headerCells[i] = excelize.Cell{StyleID: headerStyle, Value: header}
		}
		ref, err := excelize.CoordinatesToCellName(1, 1)
		if err != nil {
			return nil, err
		}
		if err := writer.SetRow(ref, headerCells); err != nil {
			return nil, fmt.Errorf("write header row for %s: %w", dataType, err)
		}

		for rowIdx, record := range records {
			cells := make([]any, len(headers))
			for i, header := range headers {
				value := record[header]
				if def, ok := entitySchema.Field(header); ok && def.Structured {
					value = codec.ToText(value)
				}
				cells[i] = cellValue(value)
			}
			ref, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := writer.SetRow(ref, cells); err != nil {
				return nil, fmt.Errorf("write row for %s: %w", dataType, err)
			}
		}
		if err := writer.Flush(); err != nil {
			return nil, fmt.Errorf("flush sheet %s: %w", dataType, err)
		}
		wroteSheet = true
	}
	if wroteSheet {
		_ = file.DeleteSheet("Sheet1")
	}

	pr, pw := io.Pipe()
	go func() {
		err := file.Write(pw)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		_ = pw.CloseWithError(err)
	}()
	return pr, nil
}

// cellValue keeps native spreadsheet typing where excelize supports it and
// falls back to text rendering for anything else. No formula sanitization:
// native cell typing is safe.
func cellValue(value any) any {
	switch value.(type) {
	case nil, string, bool, int, int32, int64, float32, float64, time.Time:
		return value
	default:
		return formatValue(value)
	}
}
