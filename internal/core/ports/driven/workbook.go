package driven

import "github.com/custodia-labs/corpora-cli/internal/core/domain"

// Sheet is one named page of a workbook.
type Sheet struct {
	// Name is the (already sanitized) sheet name.
	Name string

	// Table holds the sheet's rows.
	Table *domain.Table
}

// WorkbookWriter persists a multi-sheet workbook. Implementations must
// reject duplicate sheet names with domain.ErrSheetNameCollision rather
// than silently merging.
type WorkbookWriter interface {
	Write(path string, sheets []Sheet) error
}
