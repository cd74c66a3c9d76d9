package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// tokenSpan is one word of a document with its byte offsets.
type tokenSpan struct {
	start int
	end   int
	text  string // lower case
}

// tokenSpans tokenizes text into letter/digit runs with positions.
// Interior apostrophes and hyphens stay part of the word.
func tokenSpans(text string) []tokenSpan {
	var spans []tokenSpan
	start := -1

	isWord := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '-'
	}

	for i, r := range text {
		if isWord(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, tokenSpan{start: start, end: i, text: strings.ToLower(text[start:i])})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, tokenSpan{start: start, end: len(text), text: strings.ToLower(text[start:len(text)])})
	}

	// trim leading/trailing apostrophes and hyphens picked up as word runes
	for i := range spans {
		trimmed := strings.Trim(spans[i].text, "'-")
		if trimmed != spans[i].text {
			lead := len(spans[i].text) - len(strings.TrimLeft(spans[i].text, "'-"))
			spans[i].start += lead
			spans[i].end = spans[i].start + len(trimmed)
			spans[i].text = trimmed
		}
	}
	return spans
}

// termTokens normalises a search term into its token sequence.
func termTokens(term string) []string {
	var tokens []string
	for _, s := range tokenSpans(term) {
		if s.text != "" {
			tokens = append(tokens, s.text)
		}
	}
	return tokens
}

// findOccurrences returns the context window of every whole-token match of
// term in text. Matching is case-insensitive; a multi-word term matches
// consecutive tokens. The window spans buffer bytes on either side of the
// matched tokens, clamped to the document bounds.
func findOccurrences(text string, spans []tokenSpan, term string, buffer int) []string {
	tokens := termTokens(term)
	if len(tokens) == 0 {
		return nil
	}

	var contexts []string
	for i := 0; i+len(tokens) <= len(spans); i++ {
		matched := true
		for j, tok := range tokens {
			if spans[i+j].text != tok {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		start := spans[i].start - buffer
		if start < 0 {
			start = 0
		}
		end := spans[i+len(tokens)-1].end + buffer
		if end > len(text) {
			end = len(text)
		}
		contexts = append(contexts, text[start:end])
	}
	return contexts
}

// containsToken reports whether any alternative of term appears as a whole
// token (or consecutive tokens) in text.
func containsToken(text, term string) bool {
	spans := tokenSpans(text)
	for _, alt := range domain.Alternatives(term) {
		tokens := termTokens(alt)
		if len(tokens) == 0 {
			continue
		}
		for i := 0; i+len(tokens) <= len(spans); i++ {
			matched := true
			for j, tok := range tokens {
				if spans[i+j].text != tok {
					matched = false
					break
				}
			}
			if matched {
				return true
			}
		}
	}
	return false
}

// countToken counts whole-token matches of term in text.
func countToken(text, term string) int {
	tokens := termTokens(term)
	if len(tokens) == 0 {
		return 0
	}
	spans := tokenSpans(text)

	count := 0
	for i := 0; i+len(tokens) <= len(spans); i++ {
		matched := true
		for j, tok := range tokens {
			if spans[i+j].text != tok {
				matched = false
				break
			}
		}
		if matched {
			count++
		}
	}
	return count
}

// keyCount is a counted key for ranked outputs.
type keyCount struct {
	Key   string
	Count int
}

// topCounts returns the n highest-count entries, ties broken
// lexicographically. n <= 0 means all.
func topCounts(counts map[string]int, n int) []keyCount {
	items := make([]keyCount, 0, len(counts))
	for k, c := range counts {
		items = append(items, keyCount{k, c})
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].Count != items[b].Count {
			return items[a].Count > items[b].Count
		}
		return items[a].Key < items[b].Key
	})
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items
}
