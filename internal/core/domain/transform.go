package domain

// Replacement maps a term to its substitute in a transformation list.
type Replacement struct {
	Term        string
	Replacement string
}

// TransformOptions select the corpus-wide text transformations.
// Operations apply in a fixed order: prepunctuation replacements, lowercase,
// accent folding, URL removal, header/footer removal, period replacement,
// number removal, punctuation removal, postpunctuation replacements,
// exclusions, stopword removal, stemming.
type TransformOptions struct {
	// Prepunctuation replaces terms while punctuation is still intact
	// ("COVID-19" -> "covid").
	Prepunctuation []Replacement

	// Postpunctuation replaces terms after punctuation handling
	// ("united nations" -> "un").
	Postpunctuation []Replacement

	// ExcludeTerms are removed from the text entirely.
	ExcludeTerms []string

	// Lowercase converts the text to lower case.
	Lowercase bool

	// FoldAccents replaces accented characters with unaccented equivalents.
	FoldAccents bool

	// RemoveURLs strips URLs from the text.
	RemoveURLs bool

	// RemoveHeaders strips repeated page headers and footers.
	RemoveHeaders bool

	// ReplacePeriods replaces full stops with "|" for a consistent phrase
	// terminator.
	ReplacePeriods bool

	// RemoveNumbers strips numerals.
	RemoveNumbers bool

	// RemovePunctuation replaces punctuation with spaces.
	RemovePunctuation bool

	// RemoveStopwords strips common words.
	RemoveStopwords bool

	// Stem reduces words to their roots.
	Stem bool
}

// ProgressEvent is a decoded progress line: an overall percentage and a
// display label. Events are transient and never persisted.
type ProgressEvent struct {
	// Percent is the overall progress, 0-100.
	Percent int

	// Label is the display text. The sentinel label "?" means the line was
	// not recognised and no UI update should happen.
	Label string
}
