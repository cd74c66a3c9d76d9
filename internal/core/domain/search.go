package domain

import (
	"strings"
)

// TermSpec is an ordered table of grouping columns terminating in a
// "permutation" column. Only the last column's values are matched against
// text; earlier columns are pure grouping keys. A second-level spec carries
// one additional terminal column whose value may be an alternation of
// literals ("a|b|c"), matched as "any of".
type TermSpec struct {
	Table *Table
}

// GroupingColumns returns every column except the terminal one.
func (s TermSpec) GroupingColumns() []string {
	if len(s.Table.Columns) <= 1 {
		return nil
	}
	return s.Table.Columns[:len(s.Table.Columns)-1]
}

// TerminalColumn returns the matched column's name.
func (s TermSpec) TerminalColumn() string {
	return s.Table.Columns[len(s.Table.Columns)-1]
}

// Term returns the terminal value of a spec row.
func (s TermSpec) Term(row int) string {
	return s.Table.Rows[row][len(s.Table.Columns)-1]
}

// Alternatives splits an alternation term ("a|b|c") into its literals.
// A plain term yields itself.
func Alternatives(term string) []string {
	parts := strings.Split(term, "|")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SearchParams configure a search run.
type SearchParams struct {
	// CharacterBuffer is the context half-width in characters, >= 3.
	CharacterBuffer int

	// CoOccurrenceLimit is the top-n co-occurring token limit, >= 1.
	CoOccurrenceLimit int
}

// Occurrence is one whole-token match of a terminal search term.
type Occurrence struct {
	// TextID is the document the match was found in.
	TextID int

	// Groups holds the spec row's value per spec column (terminal included).
	Groups []string

	// Term is the matched terminal term.
	Term string

	// Context is the substring spanning the buffer on either side of the
	// match. It is both a display value and the scan domain for
	// second-level search.
	Context string
}

// ExclusionRule drops occurrence rows whose term and context match exactly.
// It supports post-hoc curation of false positives without re-running
// extraction.
type ExclusionRule struct {
	Term    string
	Context string
}

// Matches reports whether an occurrence is excluded by the rule.
func (r ExclusionRule) Matches(o Occurrence) bool {
	return r.Term == o.Term && r.Context == o.Context
}

// SheetName sanitizes a tab-partition value into a short workbook sheet
// identifier: lower-cased, spaces replaced, truncated to five bytes.
// Distinct values may collide under this truncation; the workbook writer
// is responsible for detecting that.
func SheetName(value string) string {
	s := strings.ReplaceAll(strings.ToLower(value), " ", "_")
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}
