package services

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpora-cli/internal/logger"
)

// Ensure TransformService implements the interface.
var _ driving.TransformService = (*TransformService)(nil)

var urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// TransformService rewrites the corpus text set through the selected
// transformations. Raw text files are never modified; transformed
// renditions live beside them and take precedence everywhere.
type TransformService struct {
	layout    domain.Layout
	artifacts driven.ArtifactStore
	lexicon   driven.Lexicon
	stemmer   driven.Stemmer
	sink      driven.ProgressSink
}

// NewTransformService creates a transform service.
func NewTransformService(
	layout domain.Layout,
	artifacts driven.ArtifactStore,
	lexicon driven.Lexicon,
	stemmer driven.Stemmer,
	sink driven.ProgressSink,
) *TransformService {
	if sink == nil {
		sink = driven.NopSink{}
	}
	return &TransformService{
		layout:    layout,
		artifacts: artifacts,
		lexicon:   lexicon,
		stemmer:   stemmer,
		sink:      sink,
	}
}

// Transform applies opts to every document, rebuilds the transformed text
// bundle and invalidates every cached analysis artifact. Transforming twice
// with the same options is idempotent: the source is always the raw text.
func (s *TransformService) Transform(ctx context.Context, session domain.Session, opts domain.TransformOptions) error {
	corpus := session.Scoped()
	defer s.sink.Reset()

	meta, err := loadCleanMetadata(s.layout, corpus)
	if err != nil {
		return err
	}
	ids := meta.TextIDs()

	outDir := s.layout.TransformedTxtFiles(corpus)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	logger.Section("transform " + corpus.DirName())

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.sink.Emit(fmt.Sprintf("transforming text: file %d/%d", i, len(ids)))

		raw, err := os.ReadFile(s.layout.TextFile(corpus, id))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading text %d: %w", id, err)
		}

		text := s.apply(string(raw), opts)
		if err := os.WriteFile(s.layout.TransformedTextFile(corpus, id), []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing transformed text %d: %w", id, err)
		}
	}
	s.sink.Emit(fmt.Sprintf("transforming text: file %d/%d", len(ids), len(ids)))

	if err := zipDirectory(outDir, s.layout.TransformedTextZip(corpus), s.layout.CleanMetadata(corpus)); err != nil {
		return fmt.Errorf("bundling transformed text: %w", err)
	}

	// every stored analysis result is now stale
	searchColumns := s.searchColumns(corpus)
	for _, kind := range domain.AnalysisArtifacts(searchColumns) {
		if err := s.artifacts.Invalidate(ctx, corpus, kind); err != nil {
			return err
		}
	}
	logger.Info("transformed %d texts in %s", len(ids), corpus.DirName())
	return nil
}

// searchColumns returns the search spec's grouping columns, for
// invalidating the per-column count artifacts.
func (s *TransformService) searchColumns(corpus domain.Corpus) []string {
	t, err := readTableFile(s.layout.SpecFile(corpus, domain.SpecSearchTerms))
	if err != nil {
		return nil
	}
	return domain.TermSpec{Table: t}.GroupingColumns()
}

// apply runs the selected transformations in their fixed order.
func (s *TransformService) apply(text string, opts domain.TransformOptions) string {
	for _, r := range opts.Prepunctuation {
		text = replaceInsensitive(text, r.Term, r.Replacement)
	}
	if opts.Lowercase {
		text = strings.ToLower(text)
	}
	if opts.FoldAccents {
		text = foldAccents(text)
	}
	if opts.RemoveURLs {
		text = urlPattern.ReplaceAllString(text, " ")
	}
	if opts.RemoveHeaders {
		text = removeRepeatedLines(text)
	}
	if opts.ReplacePeriods {
		text = strings.ReplaceAll(text, ".", " | ")
	}
	if opts.RemoveNumbers {
		text = strings.Map(func(r rune) rune {
			if unicode.IsNumber(r) {
				return -1
			}
			return r
		}, text)
	}
	if opts.RemovePunctuation {
		text = strings.Map(func(r rune) rune {
			// the pipe survives as the phrase terminator
			if r == '|' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
				return r
			}
			return ' '
		}, text)
	}
	for _, r := range opts.Postpunctuation {
		text = replaceInsensitive(text, r.Term, r.Replacement)
	}
	for _, term := range opts.ExcludeTerms {
		text = replaceInsensitive(text, term, " ")
	}
	if opts.RemoveStopwords {
		text = s.filterWords(text, func(w string) (string, bool) {
			if s.lexicon.IsStopword(w) {
				return "", false
			}
			return w, true
		})
	}
	if opts.Stem {
		text = s.filterWords(text, func(w string) (string, bool) {
			return s.stemmer.Stem(w), true
		})
	}
	return collapseSpaces(text)
}

// filterWords rewrites text word by word, preserving line breaks.
func (s *TransformService) filterWords(text string, f func(word string) (string, bool)) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		words := strings.Fields(line)
		kept := words[:0]
		for _, w := range words {
			if out, ok := f(w); ok {
				kept = append(kept, out)
			}
		}
		lines[i] = strings.Join(kept, " ")
	}
	return strings.Join(lines, "\n")
}

// replaceInsensitive replaces whole-word, case-insensitive matches of term.
func replaceInsensitive(text, term, replacement string) string {
	if strings.TrimSpace(term) == "" {
		return text
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, replacement)
}

// foldAccents strips combining marks ("café" -> "cafe").
func foldAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// removeRepeatedLines drops short lines that recur throughout the document;
// converted PDFs repeat their running headers and footers on every page.
func removeRepeatedLines(text string) string {
	lines := strings.Split(text, "\n")
	counts := make(map[string]int)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && len(trimmed) < 80 {
			counts[trimmed]++
		}
	}

	kept := lines[:0]
	for _, line := range lines {
		if counts[strings.TrimSpace(line)] >= 3 {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// collapseSpaces squeezes runs of spaces and tabs left by removals.
func collapseSpaces(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}
