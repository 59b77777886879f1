package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/fitsync/fitsync/internal/codec"
	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

// encodePDF emits a title and export timestamp, then one section per
// non-empty entity type: a heading followed by a "field: value" block per
// record, with a page break between sections and none after the last. The
// document is the write target itself and streams to the returned handle.
func encodePDF(dataTypes []string, data map[string][]domain.RawRecord, exportedAt time.Time) io.ReadCloser {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("fitsync export", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "fitsync data export", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Exported %s", exportedAt.Format(time.RFC3339)), "", 1, "L", false, 0, "")
	doc.Ln(4)

	firstSection := true
	for _, dataType := range dataTypes {
		records := data[dataType]
		if len(records) == 0 {
			continue
		}
		entitySchema, err := schema.For(dataType)
		if err != nil {
			// Data types were validated at the orchestration boundary.
			continue
		}
		if !firstSection {
			doc.AddPage()
		}
		firstSection = false

		doc.SetFont("Helvetica", "B", 13)
		doc.CellFormat(0, 8, dataType, "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)

		for _, record := range records {
			for _, header := range sectionHeaders(entitySchema, record) {
				value, ok := record[header]
				line := "null"
				if ok && value != nil {
					if def, defined := entitySchema.Field(header); defined && def.Structured {
						value = codec.ToText(value)
					}
					line = formatValue(value)
				}
				doc.MultiCell(0, 5, fmt.Sprintf("%s: %s", header, line), "", "L", false)
			}
			doc.Ln(3)
		}
	}

	pr, pw := io.Pipe()
	go func() {
		err := doc.Output(pw)
		_ = pw.CloseWithError(err)
	}()
	return pr
}
