package services

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpora-cli/internal/converters"
	"github.com/custodia-labs/corpora-cli/internal/converters/csvfile"
	"github.com/custodia-labs/corpora-cli/internal/converters/plaintext"
	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

func newIngestService(t *testing.T, fetcher *stubFetcher) (*IngestService, *memory.Registry, domain.Layout) {
	t.Helper()
	layout := domain.Layout{Root: t.TempDir()}
	registry := memory.NewRegistry()
	if fetcher == nil {
		fetcher = &stubFetcher{}
	}
	svc := NewIngestService(
		layout,
		registry,
		converters.NewRegistry(plaintext.New(), csvfile.New()),
		converters.NewUnsupportedPageFilter(),
		fetcher,
		memory.NewRecorderSink(),
	)
	return svc, registry, layout
}

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeZipUpload(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestIngestSingleDocument(t *testing.T) {
	svc, registry, layout := newIngestService(t, nil)
	ctx := context.Background()

	upload := writeUpload(t, "letter.txt", "Dear sir, the border is closed.")
	report, err := svc.Ingest(ctx, fixtureSession(), upload)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TextCount)
	assert.True(t, report.UsableText)

	corpus := report.Corpus
	text, err := os.ReadFile(layout.TextFile(corpus, 1))
	require.NoError(t, err)
	assert.Equal(t, "Dear sir, the border is closed.", string(text))

	// clean metadata exists and hides internal columns
	clean, err := readTableFile(layout.CleanMetadata(corpus))
	require.NoError(t, err)
	assert.Equal(t, "text_id", clean.Columns[0])
	assert.False(t, clean.HasColumn(domain.ColLocalRawFilepath))
	assert.False(t, clean.HasColumn(domain.ColIsCSV))

	// registered last, external metadata copy in place
	entry, err := registry.Lookup(ctx, "alice_novels")
	require.NoError(t, err)
	assert.Equal(t, layout.Dir(corpus), entry.TextPath)
	_, err = os.Stat(layout.ExternalMetadata(corpus))
	assert.NoError(t, err)

	// text bundle carries the clean metadata alongside the texts
	r, err := zip.OpenReader(layout.RawTextZip(corpus))
	require.NoError(t, err)
	defer r.Close()
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"1.txt", "metadata_clean.csv"}, names)
}

func TestIngestArchiveWithoutMetadata(t *testing.T) {
	svc, _, layout := newIngestService(t, nil)

	upload := writeZipUpload(t, map[string]string{
		"a.txt": "first document",
		"b.txt": "second document",
	})
	report, err := svc.Ingest(context.Background(), fixtureSession(), upload)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TextCount)
	meta, err := readTableFile(layout.Metadata(report.Corpus))
	require.NoError(t, err)
	assert.True(t, meta.HasColumn(domain.ColFilename))
	assert.Equal(t, []int{1, 2}, meta.TextIDs())
}

func TestIngestArchiveWithMetadata(t *testing.T) {
	svc, _, layout := newIngestService(t, nil)

	upload := writeZipUpload(t, map[string]string{
		"metadata.csv": "filename,author\nessay.txt,woolf\n",
		"essay.txt":    "A room of one's own.",
	})
	report, err := svc.Ingest(context.Background(), fixtureSession(), upload)
	require.NoError(t, err)

	require.Equal(t, 1, report.TextCount)
	clean, err := readTableFile(layout.CleanMetadata(report.Corpus))
	require.NoError(t, err)
	assert.Equal(t, "woolf", clean.Get(0, "author"))

	// the metadata table itself is not a corpus document
	raws, err := os.ReadDir(layout.RawFiles(report.Corpus))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "essay.txt", raws[0].Name())
}

func TestIngestMetadataTableWithDownloads(t *testing.T) {
	fetcher := &stubFetcher{content: map[string]string{
		"https://example.org/docs/one.txt": "downloaded text one",
	}}
	svc, registry, layout := newIngestService(t, fetcher)
	ctx := context.Background()

	upload := writeUpload(t, "meta.csv",
		"web_filepath,author\nhttps://example.org/docs/one.txt,marx\n")
	report, err := svc.Ingest(ctx, fixtureSession(), upload)
	require.NoError(t, err)

	assert.True(t, report.UsableText)
	assert.Equal(t, 1, fetcher.calls)

	text, err := os.ReadFile(layout.TextFile(report.Corpus, 1))
	require.NoError(t, err)
	assert.Equal(t, "downloaded text one", string(text))

	_, err = registry.Lookup(ctx, "alice_novels")
	assert.NoError(t, err)
}

func TestIngestBlockedDownloadsProduceNoRegistryRow(t *testing.T) {
	fetcher := &stubFetcher{fail: map[string]bool{"https://example.org/a.pdf": true}}
	svc, registry, layout := newIngestService(t, fetcher)
	ctx := context.Background()

	upload := writeUpload(t, "meta.csv", "web_filepath\nhttps://example.org/a.pdf\n")
	report, err := svc.Ingest(ctx, fixtureSession(), upload)
	require.NoError(t, err)

	// recoverable outcome: reported, not an error
	assert.False(t, report.UsableText)
	assert.Equal(t, 1, report.TextCount)

	entries, err := registry.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// staging was rolled back
	tmp, err := os.ReadDir(filepath.Join(layout.Root, "tmp"))
	if err == nil {
		assert.Empty(t, tmp)
	}
}

func TestIngestFailureRollsBackStaging(t *testing.T) {
	svc, registry, layout := newIngestService(t, nil)
	ctx := context.Background()

	// a zip that is not actually a zip fails during staging
	upload := writeUpload(t, "broken.zip", "not an archive")
	_, err := svc.Ingest(ctx, fixtureSession(), upload)

	var ingestErr *domain.IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, stageStaged, ingestErr.Stage)

	entries, err := registry.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	tmp, readErr := os.ReadDir(filepath.Join(layout.Root, "tmp"))
	if readErr == nil {
		assert.Empty(t, tmp)
	}
}

func TestIngestRejectsUnsupportedUpload(t *testing.T) {
	svc, _, _ := newIngestService(t, nil)

	upload := writeUpload(t, "image.bmp", "xx")
	_, err := svc.Ingest(context.Background(), fixtureSession(), upload)

	var ingestErr *domain.IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestRejectsInvalidCorpusName(t *testing.T) {
	svc, _, _ := newIngestService(t, nil)

	session := domain.Session{Owner: "alice", Corpus: "My Corpus"}
	_, err := svc.Ingest(context.Background(), session, writeUpload(t, "a.txt", "text"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestReplacesExistingCorpus(t *testing.T) {
	svc, registry, layout := newIngestService(t, nil)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, fixtureSession(), writeUpload(t, "a.txt", "old text"))
	require.NoError(t, err)
	report, err := svc.Ingest(ctx, fixtureSession(), writeUpload(t, "a.txt", "new text"))
	require.NoError(t, err)

	// identical registry rows are deduplicated
	entries, err := registry.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	text, err := os.ReadFile(layout.TextFile(report.Corpus, 1))
	require.NoError(t, err)
	assert.Equal(t, "new text", string(text))

	// no leftover backup tree
	_, err = os.Stat(layout.Dir(report.Corpus) + ".old")
	assert.True(t, os.IsNotExist(err))
}

func TestIngestCSVPassthrough(t *testing.T) {
	svc, _, layout := newIngestService(t, nil)

	upload := writeZipUpload(t, map[string]string{
		"metadata.csv": "filename\ntable.csv\n",
		"table.csv":    "col_a,col_b\n1,2\n",
	})
	report, err := svc.Ingest(context.Background(), fixtureSession(), upload)
	require.NoError(t, err)

	// carried through verbatim under its own extension
	text, err := os.ReadFile(layout.CSVTextFile(report.Corpus, 1))
	require.NoError(t, err)
	assert.Equal(t, "col_a,col_b\n1,2\n", string(text))
	_, err = os.Stat(layout.TextFile(report.Corpus, 1))
	assert.True(t, os.IsNotExist(err))

	meta, err := readTableFile(layout.Metadata(report.Corpus))
	require.NoError(t, err)
	assert.Equal(t, "true", meta.Get(0, domain.ColIsCSV))
	assert.Equal(t, filepath.Join("txt_files", "1.csv"), meta.Get(0, domain.ColLocalTxtFilepath))

	// analyses still see the document
	loaded, err := loadText(layout, report.Corpus, 1)
	require.NoError(t, err)
	assert.Equal(t, "col_a,col_b\n1,2\n", loaded)
}
