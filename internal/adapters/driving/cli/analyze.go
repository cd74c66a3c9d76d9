package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driving"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run memoized corpus analyses",
	Long: `Run text analyses over a corpus.

Results are cached in the corpus's csv_outputs/ directory; a cached
result is served as-is until the corpus is re-transformed or --force is
given. With --group-by the analysis runs once per distinct value of a
metadata column and the tagged results are concatenated.`,
}

var analyzeWordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Top word counts",
	RunE:  runAnalyzeWords,
}

var analyzeEntitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Top named-entity counts",
	RunE:  runAnalyzeEntities,
}

var analyzeSentimentCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Per-document sentiment aggregates",
	RunE:  runAnalyzeSentiment,
}

var analyzeReportCmd = &cobra.Command{
	Use:   "report [text-id|text]",
	Short: "Sentence-by-sentence sentiment breakdown",
	Long: `Scores each sentence of a document. The argument is a text id; an
argument that does not parse as an id is scored directly as text.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeReport,
}

var analyzeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-document summary statistics",
	RunE:  runAnalyzeStats,
}

var analyzeSimilarityCmd = &cobra.Command{
	Use:   "similarity",
	Short: "Pairwise document similarity matrix",
	RunE:  runAnalyzeSimilarity,
}

// Analysis flags.
var (
	analyzeN       int
	analyzeForce   bool
	analyzeGroupBy string
	analyzeTexts   string
	analyzeLabel   string
)

func init() {
	for _, c := range []*cobra.Command{
		analyzeWordsCmd, analyzeEntitiesCmd, analyzeSentimentCmd,
		analyzeStatsCmd, analyzeSimilarityCmd,
	} {
		c.Flags().BoolVarP(&analyzeForce, "force", "f", false, "Recompute even when a cached result exists")
		c.Flags().StringVarP(&analyzeTexts, "texts", "t", "", "Comma-separated text ids to restrict to")
	}
	for _, c := range []*cobra.Command{analyzeWordsCmd, analyzeEntitiesCmd, analyzeSentimentCmd, analyzeStatsCmd} {
		c.Flags().StringVarP(&analyzeGroupBy, "group-by", "g", "", "Metadata column to group by")
	}
	analyzeWordsCmd.Flags().IntVarP(&analyzeN, "top", "n", 25, "Number of top words to keep")
	analyzeEntitiesCmd.Flags().IntVarP(&analyzeN, "top", "n", 25, "Number of top entities to keep")
	analyzeSimilarityCmd.Flags().StringVarP(&analyzeLabel, "label", "l", "", "Metadata column labelling the matrix (default text_id)")

	analyzeCmd.AddCommand(analyzeWordsCmd)
	analyzeCmd.AddCommand(analyzeEntitiesCmd)
	analyzeCmd.AddCommand(analyzeSentimentCmd)
	analyzeCmd.AddCommand(analyzeReportCmd)
	analyzeCmd.AddCommand(analyzeStatsCmd)
	analyzeCmd.AddCommand(analyzeSimilarityCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// runOptions builds the shared analysis options from the flags.
func runOptions() (driving.RunOptions, error) {
	ids, err := parseTextIDs(analyzeTexts)
	if err != nil {
		return driving.RunOptions{}, err
	}
	return driving.RunOptions{Force: analyzeForce, TextIDs: ids, GroupBy: analyzeGroupBy}, nil
}

// parseTextIDs parses a comma-separated id list.
func parseTextIDs(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid text id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runAnalyzeWords(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	sess, err := session()
	if err != nil {
		return err
	}
	opts, err := runOptions()
	if err != nil {
		return err
	}

	table, err := analysisService.TopWords(context.Background(), sess, driving.TopOptions{RunOptions: opts, N: analyzeN})
	if err != nil {
		return fmt.Errorf("word count failed: %w", err)
	}
	return printTable(cmd, table)
}

func runAnalyzeEntities(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	sess, err := session()
	if err != nil {
		return err
	}
	opts, err := runOptions()
	if err != nil {
		return err
	}

	table, err := analysisService.TopEntities(context.Background(), sess, driving.TopOptions{RunOptions: opts, N: analyzeN})
	if err != nil {
		return fmt.Errorf("entity count failed: %w", err)
	}
	return printTable(cmd, table)
}

func runAnalyzeSentiment(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	sess, err := session()
	if err != nil {
		return err
	}
	opts, err := runOptions()
	if err != nil {
		return err
	}

	table, err := analysisService.Sentiment(context.Background(), sess, opts)
	if err != nil {
		return fmt.Errorf("sentiment analysis failed: %w", err)
	}
	return printTable(cmd, table)
}

func runAnalyzeReport(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	sess, err := session()
	if err != nil {
		return err
	}

	table, err := analysisService.SentimentReport(context.Background(), sess, args[0])
	if err != nil {
		return fmt.Errorf("sentiment report failed: %w", err)
	}
	return printTable(cmd, table)
}

func runAnalyzeStats(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	sess, err := session()
	if err != nil {
		return err
	}
	opts, err := runOptions()
	if err != nil {
		return err
	}

	table, err := analysisService.SummaryStats(context.Background(), sess, opts)
	if err != nil {
		return fmt.Errorf("summary statistics failed: %w", err)
	}
	return printTable(cmd, table)
}

func runAnalyzeSimilarity(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	sess, err := session()
	if err != nil {
		return err
	}
	opts, err := runOptions()
	if err != nil {
		return err
	}

	table, err := analysisService.Similarity(context.Background(), sess, analyzeLabel, opts)
	if err != nil {
		return fmt.Errorf("similarity analysis failed: %w", err)
	}
	return printTable(cmd, table)
}
