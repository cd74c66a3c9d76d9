// Package nlp holds the default in-tree language collaborators: sentence
// splitting, valence-lexicon sentiment, capitalisation-based entity
// extraction, suffix stemming, a stopword/commonness lexicon and TF-IDF
// cosine similarity. They are deliberately naive; heavier models plug in
// behind the same ports.
package nlp

import (
	"strings"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// Splitter divides text into sentences by common terminators.
type Splitter struct{}

var _ driven.SentenceSplitter = (*Splitter)(nil)

// NewSplitter returns the default sentence splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Sentences splits text on '.', '!', '?' and newlines.
func (*Splitter) Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	// Don't forget the last sentence
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
