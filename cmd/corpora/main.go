package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/fetch"
	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/nlp"
	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/storage/artifacts"
	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/storage/registry"
	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/workbook"
	"github.com/custodia-labs/corpora-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/corpora-cli/internal/converters"
	"github.com/custodia-labs/corpora-cli/internal/converters/csvfile"
	"github.com/custodia-labs/corpora-cli/internal/converters/plaintext"
	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/services"
	"github.com/custodia-labs/corpora-cli/internal/progress"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	root := configStore.GetString("corpora_root")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		root = filepath.Join(home, ".corpora", "corpora")
	}
	if err := os.MkdirAll(filepath.Join(root, "metadata"), 0o755); err != nil {
		return fmt.Errorf("creating corpora root: %w", err)
	}
	layout := domain.Layout{Root: root}

	corpusRegistry := registry.New(layout.RegistryFile())
	artifactStore := artifacts.New(layout)
	converterRegistry := converters.NewRegistry(plaintext.New(), csvfile.New())
	lexicon := nlp.NewTableLexicon()

	cli.SetDeps(cli.Deps{
		Ingestion: services.NewIngestService(
			layout,
			corpusRegistry,
			converterRegistry,
			converters.NewUnsupportedPageFilter(),
			fetch.New(),
			progress.NewTerminalSink(progress.Ingestion, os.Stderr),
		),
		Corpus: services.NewCorpusService(layout, corpusRegistry),
		Search: services.NewSearchService(
			layout,
			artifactStore,
			workbook.New(),
			progress.NewTerminalSink(progress.Search, os.Stderr),
		),
		Analysis: services.NewAnalysisService(
			layout,
			artifactStore,
			nlp.NewSplitter(),
			nlp.NewValenceScorer(),
			nlp.NewCapitalisedExtractor(lexicon),
			lexicon,
			nlp.NewTFIDFScorer(),
			progress.NewTerminalSink(progress.Analysis, os.Stderr),
		),
		Transform: services.NewTransformService(
			layout,
			artifactStore,
			lexicon,
			nlp.NewSuffixStemmer(),
			progress.NewTerminalSink(progress.Transform, os.Stderr),
		),
		Config: configStore,
		Layout: layout,
	})

	return cli.Execute()
}
