package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage registered corpora",
	Long:  `List, inspect, delete and garbage-collect registered corpora.`,
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the user's corpora",
	RunE:  runCorpusList,
}

var corpusMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Print the corpus metadata table",
	RunE:  runCorpusMetadata,
}

var corpusDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a corpus",
	Long:  `Removes the registry row, the corpus directory and the external metadata copy.`,
	RunE:  runCorpusDelete,
}

var corpusGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "Reconcile the registry with the filesystem",
	Long: `Deletes corpus directories no registry row references and drops
registry rows whose corpus is missing or holds no usable text.`,
	RunE: runCorpusGC,
}

func init() {
	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusMetadataCmd)
	corpusCmd.AddCommand(corpusDeleteCmd)
	corpusCmd.AddCommand(corpusGCCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	user, err := owner()
	if err != nil {
		return err
	}

	names, err := corpusService.List(context.Background(), user)
	if err != nil {
		return fmt.Errorf("failed to list corpora: %w", err)
	}

	if len(names) == 0 {
		cmd.Printf("No corpora registered for %s.\n", user)
		cmd.Println("Create one with: corpora ingest <file> --corpus <name>")
		return nil
	}

	cmd.Printf("Corpora for %s:\n", user)
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	return nil
}

func runCorpusMetadata(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	sess, err := session()
	if err != nil {
		return err
	}

	meta, err := corpusService.Metadata(context.Background(), sess)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	return printTable(cmd, meta)
}

func runCorpusDelete(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	sess, err := session()
	if err != nil {
		return err
	}

	if err := corpusService.Delete(context.Background(), sess); err != nil {
		return fmt.Errorf("failed to delete corpus: %w", err)
	}

	cmd.Printf("Deleted corpus %s.\n", sess.Scoped().DirName())
	return nil
}

func runCorpusGC(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	report, err := corpusService.GCSweep(context.Background())
	if err != nil {
		return fmt.Errorf("gc sweep failed: %w", err)
	}

	cmd.Printf("Removed %d orphan directories and %d invalid corpora.\n",
		report.OrphansRemoved, report.InvalidRemoved)
	return nil
}
