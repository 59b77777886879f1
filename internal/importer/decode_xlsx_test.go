package importer

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func TestImportXLSXWorkbook(t *testing.T) {
	file := excelize.NewFile()
	defer file.Close()

	if _, err := file.NewSheet("profiles"); err != nil {
		t.Fatalf("failed to create sheet: %v", err)
	}
	if err := file.SetSheetRow("profiles", "A1", &[]any{"id", "name", "age"}); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	if err := file.SetSheetRow("profiles", "A2", &[]any{uuid.New().String(), "Alice", "30"}); err != nil {
		t.Fatalf("failed to write row: %v", err)
	}
	if err := file.SetSheetRow("profiles", "A3", &[]any{uuid.New().String(), "", "oops"}); err != nil {
		t.Fatalf("failed to write row: %v", err)
	}
	file.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	store := &stubStore{}
	service := NewService(store, nil)

	result, err := service.Import(context.Background(), uuid.New(), Upload{
		FileName:  "backup.xlsx",
		MediaType: MediaTypeXLSX,
		Data:      bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if result.Total != 2 || result.Successful != 1 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(store.calls) != 1 || store.calls[0].table != "profiles" {
		t.Fatalf("unexpected store calls: %+v", store.calls)
	}
}
