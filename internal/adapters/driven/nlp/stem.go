package nlp

import (
	"strings"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// SuffixStemmer implements driven.Stemmer by stripping common English
// suffixes. It is not a full Porter stemmer but collapses the inflected
// forms that matter for counting ("walk", "walks", "walked", "walking").
type SuffixStemmer struct{}

var _ driven.Stemmer = (*SuffixStemmer)(nil)

// NewSuffixStemmer returns the default stemmer.
func NewSuffixStemmer() *SuffixStemmer {
	return &SuffixStemmer{}
}

// Stem reduces a word to its root. Words of four letters or fewer pass
// through unchanged.
func (*SuffixStemmer) Stem(word string) string {
	w := strings.ToLower(word)
	if len(w) <= 4 {
		return w
	}

	switch {
	case strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "iness"):
		return w[:len(w)-5] + "y"
	case strings.HasSuffix(w, "ness"):
		return w[:len(w)-4]
	case strings.HasSuffix(w, "ments"):
		return w[:len(w)-5]
	case strings.HasSuffix(w, "ment") && len(w) > 6:
		return w[:len(w)-4]
	case strings.HasSuffix(w, "ingly"):
		return trimDoubled(w[:len(w)-5])
	case strings.HasSuffix(w, "edly"):
		return trimDoubled(w[:len(w)-4])
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return trimDoubled(w[:len(w)-3])
	case strings.HasSuffix(w, "ied"):
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return trimDoubled(w[:len(w)-2])
	case strings.HasSuffix(w, "ly"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "es") && len(w) > 4:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

// trimDoubled undoes consonant doubling ("running" -> "run").
func trimDoubled(w string) string {
	n := len(w)
	if n >= 2 && w[n-1] == w[n-2] && !strings.ContainsRune("aeiou", rune(w[n-1])) {
		return w[:n-1]
	}
	return w
}
