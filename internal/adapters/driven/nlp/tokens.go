package nlp

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into words, trimming surrounding
// punctuation. Interior apostrophes and hyphens are kept ("don't",
// "well-known").
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r)
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
