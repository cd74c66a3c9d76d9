package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest an upload into a corpus",
	Long: `Ingest an upload and register it as the selected corpus.

The upload may be a single document (.pdf, .docx, .doc, .txt, .mp3,
.mp4), a CSV metadata table whose web_filepath rows are downloaded, or a
zip archive of documents with an optional embedded metadata table.

Re-ingesting an existing corpus replaces it atomically.

Examples:
  corpora ingest letter.pdf --user alice --corpus letters
  corpora ingest sources.csv --user alice --corpus articles
  corpora ingest bundle.zip --user alice --corpus novels`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	sess, err := session()
	if err != nil {
		return err
	}

	report, err := ingestionService.Ingest(context.Background(), sess, args[0])
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", args[0], err)
	}

	if !report.UsableText {
		cmd.Printf("Ingestion of %s produced no usable text; nothing was registered.\n", report.Corpus.DirName())
		cmd.Println("Check that downloads were reachable and the document formats are supported.")
		return nil
	}

	cmd.Printf("Registered corpus %s with %d texts.\n", report.Corpus.DirName(), report.TextCount)
	return nil
}
