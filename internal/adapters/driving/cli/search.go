package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run the hierarchical search-term engine",
	Long: `Run the search-term engine over a corpus.

The engine reads search_terms.csv from the corpus directory: grouping
columns terminating in the matched term column. An optional
second_level_search_terms.csv adds one terminal column matched strictly
inside captured contexts ("a|b|c" means any of). Occurrences listed in
exclude_occurrences.csv are filtered out by exact (term, context) match.`,
}

var searchRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract occurrences, counts and co-occurrences",
	RunE:  runSearchRun,
}

var searchWorkbookCmd = &cobra.Command{
	Use:   "workbook [tab-column] [metadata-column]",
	Short: "Write the grouped document-coverage workbook",
	Long: `Writes an Excel workbook with one sheet per distinct value of the
tab column, each sheet holding per-second-level-term document coverage
ratios aggregated by the metadata column. Requires a prior search run and
a second-level spec.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearchWorkbook,
}

var searchIndividualCmd = &cobra.Command{
	Use:   "individual [term]",
	Short: "Count one term across the corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchIndividual,
}

// Flags for search run and individual.
var (
	searchBuffer  int
	searchLimit   int
	searchGroupBy string
)

// Config keys overriding the search defaults.
const (
	configKeyBuffer = "search.character_buffer"
	configKeyLimit  = "search.co_occurrence_limit"
)

func init() {
	searchRunCmd.Flags().IntVarP(&searchBuffer, "buffer", "b", 100, "Context half-width in characters (minimum 3)")
	searchRunCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Top co-occurring tokens to keep per term")
	searchIndividualCmd.Flags().StringVarP(&searchGroupBy, "group-by", "g", "", "Metadata column to sum counts by")

	searchCmd.AddCommand(searchRunCmd)
	searchCmd.AddCommand(searchWorkbookCmd)
	searchCmd.AddCommand(searchIndividualCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearchRun(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	sess, err := session()
	if err != nil {
		return err
	}

	params := domain.SearchParams{
		CharacterBuffer:   searchBuffer,
		CoOccurrenceLimit: searchLimit,
	}
	if configStore != nil {
		if !cmd.Flags().Changed("buffer") {
			if v := configStore.GetInt(configKeyBuffer); v > 0 {
				params.CharacterBuffer = v
			}
		}
		if !cmd.Flags().Changed("limit") {
			if v := configStore.GetInt(configKeyLimit); v > 0 {
				params.CoOccurrenceLimit = v
			}
		}
	}

	if err := searchService.Run(context.Background(), sess, params); err != nil {
		if errors.Is(err, domain.ErrMissingArtifact) {
			return fmt.Errorf("search_terms.csv not found in the corpus directory: %w", err)
		}
		return fmt.Errorf("search run failed: %w", err)
	}

	cmd.Printf("Search complete for %s; results are in csv_outputs/.\n", sess.Scoped().DirName())
	return nil
}

func runSearchWorkbook(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	sess, err := session()
	if err != nil {
		return err
	}

	if err := searchService.Workbook(context.Background(), sess, args[0], args[1]); err != nil {
		if errors.Is(err, domain.ErrMissingArtifact) {
			return fmt.Errorf("workbook needs a prior 'search run' and a second-level spec: %w", err)
		}
		return fmt.Errorf("workbook build failed: %w", err)
	}

	cmd.Printf("Wrote workbook for %s partitioned by %s, aggregated by %s.\n",
		sess.Scoped().DirName(), args[0], args[1])
	return nil
}

func runSearchIndividual(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	sess, err := session()
	if err != nil {
		return err
	}

	table, err := searchService.Individual(context.Background(), sess, args[0], searchGroupBy)
	if err != nil {
		return fmt.Errorf("individual search failed: %w", err)
	}
	return printTable(cmd, table)
}
