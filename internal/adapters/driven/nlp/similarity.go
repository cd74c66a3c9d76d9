package nlp

import (
	"context"
	"math"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// TFIDFScorer implements driven.SimilarityScorer with TF-IDF weighted
// cosine similarity over word counts.
type TFIDFScorer struct{}

var _ driven.SimilarityScorer = (*TFIDFScorer)(nil)

// NewTFIDFScorer returns the default similarity scorer.
func NewTFIDFScorer() *TFIDFScorer {
	return &TFIDFScorer{}
}

// Matrix returns the pairwise cosine similarity of docs, values in [0,1].
// The diagonal is 1 for non-empty documents.
func (s *TFIDFScorer) Matrix(ctx context.Context, docs []string) ([][]float64, error) {
	n := len(docs)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	if n == 0 {
		return matrix, nil
	}

	// term frequencies per doc and document frequencies per term
	tfs := make([]map[string]float64, n)
	df := make(map[string]int)
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tf := make(map[string]float64)
		for _, w := range Tokenize(doc) {
			tf[w]++
		}
		for term := range tf {
			df[term]++
		}
		tfs[i] = tf
	}

	// TF-IDF vectors
	vectors := make([]map[string]float64, n)
	for i, tf := range tfs {
		vec := make(map[string]float64, len(tf))
		for term, count := range tf {
			idf := math.Log(float64(n)/float64(df[term])) + 1
			vec[term] = count * idf
		}
		vectors[i] = vec
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i; j < n; j++ {
			sim := cosine(vectors[i], vectors[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix, nil
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, va := range a {
		normA += va * va
		if vb, ok := b[term]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	return sim
}
