package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform the corpus text set",
	Long: `Rewrite every document through the selected transformations.

The raw text files are never modified; transformed renditions are written
beside them and take precedence in every analysis. Replacement and
exclusion lists are read from the corpus's prepunctuation_list.csv,
postpunctuation_list.csv and exclude_list.csv spec files when present.

Transforming again always starts from the raw text, so repeated runs with
the same flags are idempotent.

Examples:
  corpora transform --user alice --corpus novels --lowercase --remove-punctuation
  corpora transform --user alice --corpus novels --remove-stopwords --stem`,
	RunE: runTransform,
}

// Transform flags, in pipeline order.
var (
	transformLowercase   bool
	transformFoldAccents bool
	transformRemoveURLs  bool
	transformHeaders     bool
	transformPeriods     bool
	transformNumbers     bool
	transformPunctuation bool
	transformStopwords   bool
	transformStem        bool
)

func init() {
	transformCmd.Flags().BoolVar(&transformLowercase, "lowercase", false, "Convert text to lower case")
	transformCmd.Flags().BoolVar(&transformFoldAccents, "fold-accents", false, "Replace accented characters with plain equivalents")
	transformCmd.Flags().BoolVar(&transformRemoveURLs, "remove-urls", false, "Strip URLs")
	transformCmd.Flags().BoolVar(&transformHeaders, "remove-headers", false, "Strip repeated page headers and footers")
	transformCmd.Flags().BoolVar(&transformPeriods, "replace-periods", false, "Replace full stops with the | phrase terminator")
	transformCmd.Flags().BoolVar(&transformNumbers, "remove-numbers", false, "Strip numerals")
	transformCmd.Flags().BoolVar(&transformPunctuation, "remove-punctuation", false, "Replace punctuation with spaces")
	transformCmd.Flags().BoolVar(&transformStopwords, "remove-stopwords", false, "Strip common words")
	transformCmd.Flags().BoolVar(&transformStem, "stem", false, "Reduce words to their roots")
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, _ []string) error {
	if transformService == nil {
		return errors.New("transform service not configured")
	}

	sess, err := session()
	if err != nil {
		return err
	}
	corpus := sess.Scoped()

	opts := domain.TransformOptions{
		Prepunctuation:    loadReplacementSpec(corpus, domain.SpecPrepunctuationList),
		Postpunctuation:   loadReplacementSpec(corpus, domain.SpecPostpunctuationList),
		ExcludeTerms:      loadTermSpec(corpus, domain.SpecExcludeList),
		Lowercase:         transformLowercase,
		FoldAccents:       transformFoldAccents,
		RemoveURLs:        transformRemoveURLs,
		RemoveHeaders:     transformHeaders,
		ReplacePeriods:    transformPeriods,
		RemoveNumbers:     transformNumbers,
		RemovePunctuation: transformPunctuation,
		RemoveStopwords:   transformStopwords,
		Stem:              transformStem,
	}

	if err := transformService.Transform(context.Background(), sess, opts); err != nil {
		return fmt.Errorf("transformation failed: %w", err)
	}

	cmd.Printf("Transformed corpus %s; cached analyses were invalidated.\n", corpus.DirName())
	return nil
}

// loadReplacementSpec reads a two-column (term, replacement) spec file.
// A missing file simply contributes no replacements.
func loadReplacementSpec(corpus domain.Corpus, name string) []domain.Replacement {
	t, err := readSpecTable(workspace.SpecFile(corpus, name))
	if err != nil || len(t.Columns) < 2 {
		return nil
	}
	var out []domain.Replacement
	for i := 0; i < t.Len(); i++ {
		if term := t.Rows[i][0]; term != "" {
			out = append(out, domain.Replacement{Term: term, Replacement: t.Rows[i][1]})
		}
	}
	return out
}

// loadTermSpec reads a one-column term spec file.
func loadTermSpec(corpus domain.Corpus, name string) []string {
	t, err := readSpecTable(workspace.SpecFile(corpus, name))
	if err != nil || len(t.Columns) < 1 {
		return nil
	}
	var out []string
	for i := 0; i < t.Len(); i++ {
		if term := t.Rows[i][0]; term != "" {
			out = append(out, term)
		}
	}
	return out
}

func readSpecTable(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domain.ReadTable(f)
}
