package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// fixtureDoc is one document of a test corpus.
type fixtureDoc struct {
	ID   int
	Text string
	Meta map[string]string // extra metadata columns
}

// newFixtureCorpus lays a registered-shaped corpus out on disk: clean
// metadata plus one text file per document.
func newFixtureCorpus(t *testing.T, docs []fixtureDoc) (domain.Layout, domain.Corpus) {
	t.Helper()

	layout := domain.Layout{Root: t.TempDir()}
	corpus := domain.Corpus{Owner: "alice", Name: "novels"}

	cols := []string{domain.ColTextID}
	seen := map[string]bool{}
	for _, d := range docs {
		for k := range d.Meta {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols[1:])

	meta := domain.NewTable(cols...)
	require.NoError(t, os.MkdirAll(layout.TxtFiles(corpus), 0o755))
	for _, d := range docs {
		row := make([]string, len(cols))
		row[0] = strconv.Itoa(d.ID)
		for i, c := range cols[1:] {
			row[i+1] = d.Meta[c]
		}
		meta.AppendRow(row...)
		require.NoError(t, os.WriteFile(layout.TextFile(corpus, d.ID), []byte(d.Text), 0o644))
	}

	require.NoError(t, writeTableFile(layout.Metadata(corpus), meta))
	require.NoError(t, writeTableFile(layout.CleanMetadata(corpus), meta))
	return layout, corpus
}

func fixtureSession() domain.Session {
	return domain.Session{Owner: "alice", Corpus: "novels"}
}

// writeSpec writes a spec CSV into the corpus directory.
func writeSpec(t *testing.T, layout domain.Layout, corpus domain.Corpus, name string, table *domain.Table) {
	t.Helper()
	require.NoError(t, writeTableFile(layout.SpecFile(corpus, name), table))
}

// stubFetcher writes fixed content per URL; URLs in fail error out.
type stubFetcher struct {
	content map[string]string
	fail    map[string]bool
	calls   int
}

func (f *stubFetcher) Fetch(ctx context.Context, url, dest string) error {
	f.calls++
	if f.fail[url] {
		return fmt.Errorf("blocked: %s", url)
	}
	body, ok := f.content[url]
	if !ok {
		body = "downloaded " + url
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(body), 0o644)
}

// stubWorkbookWriter records what would have been written.
type stubWorkbookWriter struct {
	path   string
	sheets []driven.Sheet
}

func (w *stubWorkbookWriter) Write(path string, sheets []driven.Sheet) error {
	w.path = path
	w.sheets = sheets
	return nil
}
