package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Reserved metadata column names. These carry pipeline bookkeeping and are
// never exposed as free-form metadata or overridable by a caller.
const (
	ColTextID           = "text_id"
	ColWebFilepath      = "web_filepath"
	ColLocalRawFilepath = "local_raw_filepath"
	ColLocalTxtFilepath = "local_txt_filepath"
	ColDetectedLanguage = "detected_language"
	ColIsCSV            = "is_csv"
	ColPageNumbers      = "page_numbers"
	ColForceOCR         = "force_ocr"
	ColFilename         = "filename"
)

// reservedColumns is the closed set from the ingestion contract.
var reservedColumns = map[string]bool{
	ColTextID:           true,
	ColWebFilepath:      true,
	ColLocalRawFilepath: true,
	ColLocalTxtFilepath: true,
	ColDetectedLanguage: true,
	ColIsCSV:            true,
	ColPageNumbers:      true,
	ColForceOCR:         true,
	ColFilename:         true,
}

// internalColumns are stripped from the caller-facing clean metadata view.
var internalColumns = map[string]bool{
	ColIsCSV:            true,
	ColLocalRawFilepath: true,
	ColLocalTxtFilepath: true,
	ColDetectedLanguage: true,
}

// IsReservedColumn reports whether a column name is reserved.
func IsReservedColumn(name string) bool {
	return reservedColumns[name]
}

// FreeColumns returns the non-reserved subset of cols, order preserved.
func FreeColumns(cols []string) []string {
	var free []string
	for _, c := range cols {
		if !reservedColumns[c] {
			free = append(free, c)
		}
	}
	return free
}

// Table is an ordered-column table of string cells. It backs the corpus
// metadata, the registry and the search-term specs. Column names are unique;
// rows are dense (one cell per column).
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// HasColumn reports whether the table has a column.
func (t *Table) HasColumn(name string) bool {
	return t.columnIndex(name) >= 0
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Get returns the cell at (row, column), empty if the column is absent.
func (t *Table) Get(row int, column string) string {
	i := t.columnIndex(column)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][i]
}

// Set writes the cell at (row, column), adding the column if absent.
func (t *Table) Set(row int, column, value string) {
	i := t.columnIndex(column)
	if i < 0 {
		t.AddColumn(column)
		i = len(t.Columns) - 1
	}
	t.Rows[row][i] = value
}

// AddColumn appends an empty column.
func (t *Table) AddColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

// AppendRow appends a row of cells; short rows are padded.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{Columns: append([]string(nil), t.Columns...)}
	c.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}

// Select returns a copy containing only rows where keep returns true.
func (t *Table) Select(keep func(row int) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for i := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, append([]string(nil), t.Rows[i]...))
		}
	}
	return out
}

// DistinctValues returns the distinct values of a column in first-seen order.
func (t *Table) DistinctValues(column string) []string {
	seen := make(map[string]bool)
	var vals []string
	for i := range t.Rows {
		v := t.Get(i, column)
		if !seen[v] {
			seen[v] = true
			vals = append(vals, v)
		}
	}
	return vals
}

// ReadTable parses a CSV table. The first record is the header.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidInput)
	}
	t := &Table{Columns: records[0]}
	for _, rec := range records[1:] {
		t.AppendRow(rec...)
	}
	return t, nil
}

// WriteTo writes the table as CSV, header first.
func (t *Table) WriteTo(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EnsureTextIDs synthesizes a dense 1..N text_id column in row order when
// the table does not already carry one.
func (t *Table) EnsureTextIDs() {
	if t.HasColumn(ColTextID) {
		return
	}
	t.AddColumn(ColTextID)
	for i := range t.Rows {
		t.Set(i, ColTextID, strconv.Itoa(i+1))
	}
}

// TextIDs returns every parseable text_id in row order.
func (t *Table) TextIDs() []int {
	var ids []int
	for i := range t.Rows {
		if id, err := strconv.Atoi(t.Get(i, ColTextID)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// RowByTextID returns the row index for a text id, or -1.
func (t *Table) RowByTextID(textID int) int {
	want := strconv.Itoa(textID)
	for i := range t.Rows {
		if t.Get(i, ColTextID) == want {
			return i
		}
	}
	return -1
}

// Clean returns the caller-facing view: internal bookkeeping columns
// stripped and text_id moved first.
func (t *Table) Clean() *Table {
	cols := []string{ColTextID}
	for _, c := range t.Columns {
		if c != ColTextID && !internalColumns[c] {
			cols = append(cols, c)
		}
	}
	out := NewTable(cols...)
	for i := range t.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = t.Get(i, c)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// SortRowsBy sorts rows by a column, numerically when both cells parse as
// integers, lexicographically otherwise.
func (t *Table) SortRowsBy(column string) {
	i := t.columnIndex(column)
	if i < 0 {
		return
	}
	sort.SliceStable(t.Rows, func(a, b int) bool {
		va, vb := t.Rows[a][i], t.Rows[b][i]
		na, errA := strconv.Atoi(va)
		nb, errB := strconv.Atoi(vb)
		if errA == nil && errB == nil {
			return na < nb
		}
		return va < vb
	})
}
