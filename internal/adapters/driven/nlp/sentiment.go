package nlp

import (
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// valences maps words to scores in [-4, +4].
var valences = map[string]float64{
	"abandoned":    -2.0,
	"admire":       2.6,
	"adore":        3.0,
	"afraid":       -2.0,
	"amazing":      2.8,
	"angry":        -2.7,
	"appalling":    -3.0,
	"awful":        -3.0,
	"bad":          -2.5,
	"beautiful":    2.9,
	"best":         3.2,
	"better":       1.9,
	"bless":        2.0,
	"brilliant":    2.8,
	"broken":       -1.8,
	"calm":         1.3,
	"catastrophic": -3.4,
	"cheerful":     2.5,
	"cruel":        -3.0,
	"dead":         -3.3,
	"delight":      2.9,
	"despair":      -3.1,
	"disaster":     -3.1,
	"dreadful":     -2.8,
	"enjoy":        2.2,
	"excellent":    3.0,
	"fail":         -2.5,
	"failure":      -2.6,
	"fear":         -2.2,
	"fine":         0.8,
	"fraud":        -2.8,
	"free":         1.8,
	"friend":       2.2,
	"glad":         2.0,
	"good":         1.9,
	"grateful":     2.4,
	"great":        3.1,
	"grief":        -2.9,
	"happy":        2.7,
	"hate":         -3.2,
	"hatred":       -3.4,
	"hope":         1.9,
	"horrible":     -2.5,
	"hurt":         -2.4,
	"ill":          -1.8,
	"joy":          2.8,
	"kill":         -3.7,
	"kind":         2.4,
	"lose":         -1.3,
	"loss":         -1.3,
	"love":         3.2,
	"lovely":       2.8,
	"miserable":    -3.0,
	"nice":         1.8,
	"pain":         -2.5,
	"peace":        2.5,
	"perfect":      2.7,
	"pleasant":     2.3,
	"poor":         -1.9,
	"proud":        2.1,
	"sad":          -2.1,
	"safe":         1.9,
	"sick":         -2.3,
	"sorrow":       -2.6,
	"strong":       2.3,
	"success":      2.7,
	"terrible":     -2.1,
	"tragedy":      -3.4,
	"trust":        2.3,
	"ugly":         -2.6,
	"war":          -2.9,
	"weak":         -1.9,
	"wonderful":    2.7,
	"worst":        -3.1,
	"wrong":        -2.1,
}

// negations flip the valence of the following word.
var negations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"neither": true,
	"nor":     true,
	"cannot":  true,
	"without": true,
}

// ValenceScorer implements driven.SentimentScorer on a fixed word-valence
// table with single-token negation flipping.
type ValenceScorer struct{}

var _ driven.SentimentScorer = (*ValenceScorer)(nil)

// NewValenceScorer returns the default scorer.
func NewValenceScorer() *ValenceScorer {
	return &ValenceScorer{}
}

// Score returns the sentence's valence in [-4, +4]; 0 is neutral.
func (*ValenceScorer) Score(sentence string) float64 {
	words := Tokenize(sentence)

	var total float64
	var hits int
	negated := false

	for _, w := range words {
		if negations[w] {
			negated = true
			continue
		}
		if v, ok := valences[w]; ok {
			if negated {
				v = -v
			}
			total += v
			hits++
		}
		negated = false
	}

	if hits == 0 {
		return 0
	}

	score := total / float64(hits)
	if score > 4 {
		score = 4
	}
	if score < -4 {
		score = -4
	}
	return score
}
