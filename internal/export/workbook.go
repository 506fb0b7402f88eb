package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"github.com/zarlcorp/sensorgen/internal/device"
)

// WorkbookSheet is the sheet holding the identities.
const WorkbookSheet = "devices"

var workbookHeader = []any{"index", "client_id", "username", "password"}

// WriteWorkbook writes the identities as an XLSX workbook with a single sheet.
func WriteWorkbook(w io.Writer, ids []device.Identity) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", WorkbookSheet); err != nil {
		return fmt.Errorf("write workbook: rename sheet: %w", err)
	}

	if err := setRow(f, 1, workbookHeader); err != nil {
		return fmt.Errorf("write workbook: header: %w", err)
	}
	for i, id := range ids {
		row := []any{id.Index, id.ClientID, id.Username, id.Password}
		if err := setRow(f, i+2, row); err != nil {
			return fmt.Errorf("write workbook: %s: %w", id.ClientID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(WorkbookSheet, cell, &values)
}
