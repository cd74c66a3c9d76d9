package cli

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpora-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "0.1.0"

// Services wired in at startup via SetDeps.
var (
	ingestionService driving.IngestionService
	corpusService    driving.CorpusService
	searchService    driving.SearchService
	analysisService  driving.AnalysisService
	transformService driving.TransformService
	configStore      driven.ConfigStore
	workspace        domain.Layout
)

// Deps bundles everything the command tree needs.
type Deps struct {
	Ingestion driving.IngestionService
	Corpus    driving.CorpusService
	Search    driving.SearchService
	Analysis  driving.AnalysisService
	Transform driving.TransformService
	Config    driven.ConfigStore
	Layout    domain.Layout
}

// SetDeps injects the service implementations.
func SetDeps(d Deps) {
	ingestionService = d.Ingestion
	corpusService = d.Corpus
	searchService = d.Search
	analysisService = d.Analysis
	transformService = d.Transform
	configStore = d.Config
	workspace = d.Layout
}

// Persistent flags.
var (
	verboseFlag bool
	userFlag    string
	corpusFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "Corpus ingestion and text analysis workbench",
	Long: `Ingest document collections into normalised corpora and run
search, transformation and text analyses over them.

Every command acts on behalf of a user (--user) and most act on one of
that user's corpora (--corpus).

Examples:
  # Ingest a zip of documents as the corpus "novels"
  corpora ingest bundle.zip --user alice --corpus novels

  # List alice's corpora
  corpora corpus list --user alice

  # Run the search-term engine
  corpora search run --user alice --corpus novels --buffer 100`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		return checkAccessPassword(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "Acting user id")
	rootCmd.PersistentFlags().StringVarP(&corpusFlag, "corpus", "c", "", "Corpus name")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// session builds the owner-scoped session from the persistent flags.
func session() (domain.Session, error) {
	owner, err := owner()
	if err != nil {
		return domain.Session{}, err
	}
	if corpusFlag == "" {
		return domain.Session{}, errors.New("--corpus is required")
	}
	return domain.Session{Owner: owner, Corpus: corpusFlag}, nil
}

// owner returns the acting user id from the persistent flags.
func owner() (string, error) {
	if userFlag == "" {
		return "", errors.New("--user is required")
	}
	return strings.ToLower(userFlag), nil
}

// checkAccessPassword gates the command tree behind the shared workspace
// password when one is configured.
func checkAccessPassword(cmd *cobra.Command) error {
	if configStore == nil {
		return nil
	}
	want := configStore.GetString("access_password")
	if want == "" {
		return nil
	}

	cmd.Print("Password: ")
	var entered string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		cmd.Println()
		if err != nil {
			return err
		}
		entered = string(data)
	} else {
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &entered); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}

	if subtle.ConstantTimeCompare([]byte(entered), []byte(want)) != 1 {
		return errors.New("incorrect password")
	}
	return nil
}

// printTable writes a table as CSV on the command's output.
func printTable(cmd *cobra.Command, t *domain.Table) error {
	return t.WriteTo(cmd.OutOrStdout())
}
