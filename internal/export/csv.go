package export

import (
	"encoding/csv"
	"io"

	"github.com/fitsync/fitsync/internal/codec"
	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

// encodeCSV streams sections in the requested order: a marker row naming
// the entity type, a header row, then one row per record, with a blank
// separator row between sections but not before the first. Structured
// fields are serialized through the subfield codec and every cell passes
// the formula sanitizer before encoding. The handle is returned only after
// the pipeline is wired and the source started.
func encodeCSV(dataTypes []string, data map[string][]domain.RawRecord) io.ReadCloser {
	source := func(push func(codec.Row) error) error {
		first := true
		for _, dataType := range dataTypes {
			records := data[dataType]
			if len(records) == 0 {
				continue
			}
			entitySchema, err := schema.For(dataType)
			if err != nil {
				return err
			}
			if !first {
				if err := push(codec.Row{}); err != nil {
					return err
				}
			}
			first = false

			if err := push(codec.Row{codec.SectionMarker(dataType)}); err != nil {
				return err
			}
			headers := sectionHeaders(entitySchema, records[0])
			if err := push(codec.Row(headers)); err != nil {
				return err
			}
			for _, record := range records {
				row := make(codec.Row, len(headers))
				for i, header := range headers {
					value := record[header]
					if def, ok := entitySchema.Field(header); ok && def.Structured {
						value = codec.ToText(value)
					}
					value = codec.SanitizeCell(value)
					row[i] = formatValue(value)
				}
				if err := push(row); err != nil {
					return err
				}
			}
		}
		return nil
	}

	encode := func(rows <-chan codec.Row, w io.Writer) error {
		writer := csv.NewWriter(w)
		for row := range rows {
			if len(row) == 0 {
				// Blank separator between sections.
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
				continue
			}
			if err := writer.Write(row); err != nil {
				return err
			}
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	}

	return codec.Run(source, encode)
}
