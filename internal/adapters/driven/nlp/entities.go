package nlp

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// CapitalisedExtractor implements driven.EntityExtractor by collecting runs
// of capitalised words. Sentence-initial single words are only kept when
// they are not ordinary vocabulary, which filters most false positives.
type CapitalisedExtractor struct {
	lexicon driven.Lexicon
}

var _ driven.EntityExtractor = (*CapitalisedExtractor)(nil)

// NewCapitalisedExtractor returns the default extractor.
func NewCapitalisedExtractor(lexicon driven.Lexicon) *CapitalisedExtractor {
	return &CapitalisedExtractor{lexicon: lexicon}
}

// Entities returns capitalised word runs, one entry per occurrence.
func (e *CapitalisedExtractor) Entities(text string) []string {
	var entities []string

	for _, sentence := range NewSplitter().Sentences(text) {
		words := strings.Fields(sentence)
		var run []string

		flush := func(startsSentence bool) {
			if len(run) == 0 {
				return
			}
			// A lone capitalised word opening a sentence is usually just
			// the start of the sentence.
			if !(startsSentence && len(run) == 1 && e.ordinary(run[0])) {
				entities = append(entities, strings.Join(run, " "))
			}
			run = nil
		}

		for i, word := range words {
			trimmed := strings.TrimFunc(word, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			})
			if isCapitalised(trimmed) {
				run = append(run, trimmed)
				continue
			}
			flush(i == len(run))
		}
		flush(len(words) == len(run))
	}

	return entities
}

// ordinary reports whether a capitalised word is plain vocabulary rather
// than a name.
func (e *CapitalisedExtractor) ordinary(word string) bool {
	lower := strings.ToLower(word)
	if e.lexicon == nil {
		return false
	}
	return e.lexicon.IsStopword(lower) || e.lexicon.Zipf(lower) >= 4.5
}

func isCapitalised(word string) bool {
	if word == "" {
		return false
	}
	runes := []rune(word)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
