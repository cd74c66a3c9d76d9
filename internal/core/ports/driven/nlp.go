package driven

import "context"

// The tokenizer/stemmer/sentiment/similarity machinery is an external
// collaborator. These interfaces are the seam; the in-tree adapters under
// internal/adapters/driven/nlp are deliberately naive defaults.

// SentenceSplitter divides text into sentences.
type SentenceSplitter interface {
	Sentences(text string) []string
}

// SentimentScorer scores one sentence from -4 (most negative) to +4
// (most positive); 0 is neutral.
type SentimentScorer interface {
	Score(sentence string) float64
}

// EntityExtractor finds named entities (places, organisations, ...).
type EntityExtractor interface {
	Entities(text string) []string
}

// Stemmer reduces a word to its root.
type Stemmer interface {
	Stem(word string) string
}

// Lexicon answers word-level questions: stopword membership and commonness
// (Zipf value; 6 means once per thousand words, 3 once per million).
type Lexicon interface {
	IsStopword(word string) bool
	Zipf(word string) float64
}

// SimilarityScorer computes a pairwise document similarity matrix
// (TF-IDF cosine or equivalent), values in [0,1].
type SimilarityScorer interface {
	Matrix(ctx context.Context, docs []string) ([][]float64, error)
}
