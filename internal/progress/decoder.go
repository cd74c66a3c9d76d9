// Package progress translates the raw progress lines emitted by
// long-running operations into percentage/label events and renders them to
// the terminal at a bounded rate. The line format is a stable textual
// protocol: a known phase prefix followed by "numerator/denominator"
// (for example "downloading file 2/5").
package progress

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// SentinelLabel marks an unrecognised line; it means "no UI update".
const SentinelLabel = "?"

// Phase is one entry of an operation's phase table.
type Phase struct {
	// Prefix is the literal line prefix that identifies the phase.
	Prefix string

	// Base is the overall proportion completed when this phase begins.
	Base float64

	// Label is the display prefix shown to the user.
	Label string
}

// Table is a closed, operation-specific phase table, ordered by Base.
// Tables are fixed; nothing is derived at runtime.
type Table []Phase

// Ingestion covers the two backend phases of an ingestion run. Converting
// dominates the wall clock, so downloading is given a thin slice.
var Ingestion = Table{
	{Prefix: "downloading file ", Base: 0.00, Label: "(1/2) downloading file(s): "},
	{Prefix: "converting to text: file ", Base: 0.05, Label: "(2/2) converting to text: "},
}

// Search covers the three phases of a search-term run.
var Search = Table{
	{Prefix: "processing search terms for group ", Base: 0.00, Label: "(1/3) processing search terms group "},
	{Prefix: "co-occurrence search for group ", Base: 0.33, Label: "(2/3) finding co-occurring words for group "},
	{Prefix: "second-level search for group ", Base: 0.66, Label: "(3/3) finding second-level search terms for group "},
}

// Single-phase tables for the analysis drivers.
var (
	WordCount = Table{{Prefix: "counting words: file ", Base: 0, Label: "calculating top words "}}
	Entities  = Table{{Prefix: "counting entities: file ", Base: 0, Label: "calculating top entities "}}
	Sentiment = Table{{Prefix: "scoring sentiment: file ", Base: 0, Label: "getting sentiments "}}
	Summary   = Table{{Prefix: "measuring documents: file ", Base: 0, Label: "getting summary statistics "}}
	Transform = Table{{Prefix: "transforming text: file ", Base: 0, Label: "transforming text "}}
)

// Analysis is the union of the single-phase analysis tables, for drivers
// that do not know in advance which analysis will run.
var Analysis = concat(WordCount, Entities, Sentiment, Summary)

func concat(tables ...Table) Table {
	var out Table
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

// Decode translates one raw line into a progress event. Unrecognised or
// unparseable lines decode to (0, "?"), meaning no update.
func (t Table) Decode(line string) domain.ProgressEvent {
	for i, phase := range t {
		rest, ok := strings.CutPrefix(line, phase.Prefix)
		if !ok {
			continue
		}

		num, den, ok := parseFraction(rest)
		if !ok || den == 0 {
			return domain.ProgressEvent{Percent: 0, Label: SentinelLabel}
		}

		// proportion available to this phase, up to the next one
		next := 1.0
		if i+1 < len(t) {
			next = t[i+1].Base
		}
		span := next - phase.Base
		if span <= 0 {
			// single-phase entries in a union table each span the whole bar
			span = 1 - phase.Base
		}

		pct := int((phase.Base + float64(num)/float64(den)*span) * 100)
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}

		return domain.ProgressEvent{Percent: pct, Label: phase.Label + strings.TrimSpace(rest)}
	}
	return domain.ProgressEvent{Percent: 0, Label: SentinelLabel}
}

// parseFraction extracts "num/den" from the tail of a progress line.
func parseFraction(s string) (num, den int, ok bool) {
	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return 0, 0, false
	}

	num, ok = trailingInt(s[:slash])
	if !ok {
		return 0, 0, false
	}
	den, ok = leadingInt(s[slash+1:])
	return num, den, ok
}

// trailingInt parses the integer ending the string.
func trailingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	start := len(s)
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == len(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s[start:])
	return n, err == nil
}

// leadingInt parses the integer starting the string.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}
