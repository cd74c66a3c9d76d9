// Package workbook writes multi-sheet xlsx workbooks for the grouped
// search outputs.
package workbook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.WorkbookWriter = (*Writer)(nil)

// Writer persists workbooks via excelize.
type Writer struct{}

// New creates a workbook writer.
func New() *Writer {
	return &Writer{}
}

// Write creates the workbook at path with one page per sheet. Duplicate
// sheet names are rejected before anything is written; truncated names
// colliding silently would overwrite a tab's data.
func (w *Writer) Write(path string, sheets []driven.Sheet) error {
	seen := make(map[string]bool, len(sheets))
	for _, sheet := range sheets {
		if seen[sheet.Name] {
			return fmt.Errorf("sheet %q: %w", sheet.Name, domain.ErrSheetNameCollision)
		}
		seen[sheet.Name] = true
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			// rename the default sheet instead of leaving it empty
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", sheet.Name, err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("adding sheet %q: %w", sheet.Name, err)
			}
		}
		if err := writeTable(f, sheet.Name, sheet.Table); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating workbook directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, table *domain.Table) error {
	if table == nil {
		return nil
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %q: %w", sheet, err)
	}

	for r, row := range table.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("addressing row %d of %q: %w", r+2, sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", r+2, sheet, err)
		}
	}
	return nil
}
