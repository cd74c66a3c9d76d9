package nlp

import (
	"strings"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

var stopwords = map[string]bool{}

func init() {
	list := "a about above after again against all am an and any are aren't as at " +
		"be because been before being below between both but by can't cannot could " +
		"couldn't did didn't do does doesn't doing don't down during each few for " +
		"from further had hadn't has hasn't have haven't having he he'd he'll he's " +
		"her here here's hers herself him himself his how how's i i'd i'll i'm i've " +
		"if in into is isn't it it's its itself let's me more most mustn't my myself " +
		"no nor not of off on once only or other ought our ours ourselves out over " +
		"own same shan't she she'd she'll she's should shouldn't so some such than " +
		"that that's the their theirs them themselves then there there's these they " +
		"they'd they'll they're they've this those through to too under until up " +
		"very was wasn't we we'd we'll we're we've were weren't what what's when " +
		"when's where where's which while who who's whom why why's with won't would " +
		"wouldn't you you'd you'll you're you've your yours yourself yourselves"
	for _, w := range strings.Fields(list) {
		stopwords[w] = true
	}
}

// zipfTable holds approximate commonness values for frequent English words.
// 6 means roughly once per thousand words, 3 once per million.
var zipfTable = map[string]float64{
	"the": 7.7, "of": 7.3, "and": 7.3, "to": 7.3, "a": 7.2, "in": 7.1,
	"is": 6.9, "that": 6.8, "it": 6.8, "was": 6.7, "for": 6.7, "on": 6.6,
	"are": 6.6, "as": 6.6, "with": 6.6, "his": 6.5, "they": 6.5, "at": 6.5,
	"be": 6.5, "this": 6.5, "have": 6.4, "from": 6.4, "or": 6.4, "had": 6.3,
	"by": 6.3, "not": 6.3, "but": 6.3, "what": 6.2, "all": 6.2, "were": 6.2,
	"we": 6.2, "when": 6.1, "your": 6.1, "can": 6.1, "said": 6.0, "there": 6.0,
	"each": 5.6, "which": 6.0, "she": 6.1, "do": 6.1, "how": 6.0, "their": 6.0,
	"if": 6.0, "will": 6.1, "up": 6.0, "other": 5.8, "about": 6.0, "out": 6.0,
	"many": 5.7, "then": 5.9, "them": 5.9, "these": 5.7, "so": 6.0, "some": 5.9,
	"her": 6.1, "would": 5.9, "make": 5.8, "like": 6.0, "him": 5.9, "into": 5.9,
	"time": 5.9, "has": 6.1, "look": 5.6, "two": 5.8, "go": 5.8, "see": 5.8,
	"no": 6.1, "way": 5.8, "could": 5.8, "people": 5.8, "my": 6.2, "than": 5.9,
	"first": 5.7, "water": 5.3, "who": 6.0, "may": 5.8, "down": 5.6, "day": 5.7,
	"did": 5.8, "get": 5.9, "come": 5.7, "made": 5.6, "part": 5.5, "over": 5.8,
	"new": 5.9, "work": 5.7, "world": 5.6, "year": 5.7, "because": 5.8,
	"good": 5.8, "man": 5.6, "think": 5.8, "say": 5.8, "great": 5.5,
	"where": 5.8, "through": 5.6, "much": 5.7, "before": 5.6, "too": 5.8,
	"very": 5.9, "just": 6.0, "also": 5.8, "know": 5.9, "back": 5.7,
	"after": 5.7, "use": 5.5, "our": 5.9, "well": 5.7, "even": 5.8,
	"want": 5.7, "any": 5.8, "only": 5.8, "most": 5.7, "us": 5.8,
}

// unknownZipf is returned for words outside the table; they are treated as
// rare.
const unknownZipf = 2.0

// TableLexicon implements driven.Lexicon on fixed in-memory tables.
type TableLexicon struct{}

var _ driven.Lexicon = (*TableLexicon)(nil)

// NewTableLexicon returns the default lexicon.
func NewTableLexicon() *TableLexicon {
	return &TableLexicon{}
}

// IsStopword reports whether the word is an English stopword.
func (*TableLexicon) IsStopword(word string) bool {
	return stopwords[strings.ToLower(word)]
}

// Zipf returns the word's commonness; unlisted words score as rare.
func (*TableLexicon) Zipf(word string) float64 {
	if z, ok := zipfTable[strings.ToLower(word)]; ok {
		return z
	}
	return unknownZipf
}
