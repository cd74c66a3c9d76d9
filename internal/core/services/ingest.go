package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpora-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestionService = (*IngestService)(nil)

// Pipeline stage names used in ingestion errors.
const (
	stageStaged     = "staged"
	stageMetadata   = "metadata"
	stageConverted  = "converted"
	stageNormalized = "normalized"
	stageRegistered = "registered"
)

// IngestService turns an upload into a registered corpus. All work happens
// in a request-scoped staging directory; the corpus directory and the
// registry are only touched once every earlier stage has succeeded.
type IngestService struct {
	layout     domain.Layout
	registry   driven.CorpusRegistry
	converters driven.ConverterRegistry
	pageFilter driven.PageFilter
	fetcher    driven.Fetcher
	sink       driven.ProgressSink
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	layout domain.Layout,
	registry driven.CorpusRegistry,
	converters driven.ConverterRegistry,
	pageFilter driven.PageFilter,
	fetcher driven.Fetcher,
	sink driven.ProgressSink,
) *IngestService {
	if sink == nil {
		sink = driven.NopSink{}
	}
	return &IngestService{
		layout:     layout,
		registry:   registry,
		converters: converters,
		pageFilter: pageFilter,
		fetcher:    fetcher,
		sink:       sink,
	}
}

// Ingest runs the full pipeline for one upload.
func (s *IngestService) Ingest(ctx context.Context, session domain.Session, uploadPath string) (*driving.IngestReport, error) {
	if err := domain.ValidateCorpusName(session.Corpus); err != nil {
		return nil, err
	}
	corpus := session.Scoped()
	defer s.sink.Reset()

	upload, err := domain.DetectUpload(uploadPath)
	if err != nil {
		return nil, &domain.IngestionError{Stage: stageStaged, Err: err}
	}

	staging := s.layout.StagingDir(session.Owner, uuid.New().String())
	logger.Section("ingest " + corpus.DirName())
	logger.Debug("staging %s upload at %s", upload.Shape, staging)

	fail := func(stage string, err error) (*driving.IngestReport, error) {
		os.RemoveAll(staging)
		return nil, &domain.IngestionError{Stage: stage, Err: err}
	}

	meta, err := s.stage(upload, staging)
	if err != nil {
		return fail(stageStaged, err)
	}

	if err := s.resolveMetadata(meta, staging); err != nil {
		return fail(stageMetadata, err)
	}

	if err := s.download(ctx, meta, staging); err != nil {
		return fail(stageMetadata, err)
	}

	if err := s.filterPages(ctx, meta, staging); err != nil {
		return fail(stageConverted, err)
	}

	if err := s.convert(ctx, meta, staging); err != nil {
		return fail(stageConverted, err)
	}

	if err := s.normalize(meta, staging); err != nil {
		return fail(stageNormalized, err)
	}

	report := &driving.IngestReport{Corpus: corpus, TextCount: meta.Len()}
	if !hasNonEmptyText(filepath.Join(staging, "txt_files")) {
		// Recoverable outcome, not a failure: blocked downloads and
		// unsupported formats leave nothing to register.
		os.RemoveAll(staging)
		logger.Warn("ingestion of %s produced no usable text", corpus.DirName())
		return report, nil
	}
	report.UsableText = true

	if err := s.install(corpus, staging, meta); err != nil {
		return fail(stageRegistered, err)
	}

	if err := s.registry.Register(ctx, domain.RegistryEntry{
		Name:         corpus.DirName(),
		TextPath:     s.layout.Dir(corpus),
		MetadataPath: s.layout.ExternalMetadata(corpus),
	}); err != nil {
		return nil, &domain.IngestionError{Stage: stageRegistered, Err: err}
	}

	logger.Info("registered corpus %s with %d texts", corpus.DirName(), report.TextCount)
	return report, nil
}

// stage materialises the upload inside the staging directory and returns
// the initial metadata table.
func (s *IngestService) stage(upload domain.Upload, staging string) (*domain.Table, error) {
	rawDir := filepath.Join(staging, "raw_files")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(staging, "txt_files"), 0o755); err != nil {
		return nil, err
	}

	switch upload.Shape {
	case domain.UploadMetadataTable:
		return readTableFile(upload.Path)

	case domain.UploadSingleDocument:
		name := filepath.Base(upload.Path)
		if err := copyFile(upload.Path, filepath.Join(rawDir, name)); err != nil {
			return nil, err
		}
		t := domain.NewTable(domain.ColFilename)
		t.AppendRow(name)
		return t, nil

	case domain.UploadArchiveWithMetadata:
		if err := extractZip(upload.Path, rawDir); err != nil {
			return nil, err
		}
		return popArchiveMetadata(rawDir)

	case domain.UploadArchiveWithoutMetadata:
		if err := extractZip(upload.Path, rawDir); err != nil {
			return nil, err
		}
		return listingMetadata(rawDir)

	default:
		return nil, fmt.Errorf("%w: upload shape %v", domain.ErrUnsupportedType, upload.Shape)
	}
}

// popArchiveMetadata reads the archive's root-level metadata table and
// removes it from the raw files.
func popArchiveMetadata(rawDir string) (*domain.Table, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		p := filepath.Join(rawDir, e.Name())
		t, err := readTableFile(p)
		if err != nil {
			return nil, err
		}
		if err := os.Remove(p); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: archive has no metadata table", domain.ErrInvalidInput)
}

// listingMetadata synthesizes a metadata table from the extracted files.
func listingMetadata(rawDir string) (*domain.Table, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, err
	}
	t := domain.NewTable(domain.ColFilename)
	for _, e := range entries {
		if !e.IsDir() && domain.IsDocumentFile(e.Name()) {
			t.AppendRow(e.Name())
		}
	}
	if t.Len() == 0 {
		return nil, fmt.Errorf("%w: archive contains no documents", domain.ErrInvalidInput)
	}
	return t, nil
}

// resolveMetadata assigns text ids and links rows to their staged files.
func (s *IngestService) resolveMetadata(meta *domain.Table, staging string) error {
	if meta.Len() == 0 {
		return fmt.Errorf("%w: metadata table has no rows", domain.ErrInvalidInput)
	}
	meta.EnsureTextIDs()

	if !meta.HasColumn(domain.ColFilename) && !meta.HasColumn(domain.ColWebFilepath) {
		return fmt.Errorf("%w: metadata needs a %s or %s column",
			domain.ErrInvalidInput, domain.ColFilename, domain.ColWebFilepath)
	}

	// Paths in metadata are corpus-relative so the table survives the move
	// from staging to the final directory.
	for i := 0; i < meta.Len(); i++ {
		name := meta.Get(i, domain.ColFilename)
		if name == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(staging, "raw_files", name)); err == nil {
			meta.Set(i, domain.ColLocalRawFilepath, filepath.Join("raw_files", name))
		}
	}
	return nil
}

// download fetches every web-referenced row that has no staged file yet.
// A failed download leaves its row without text rather than aborting the
// run.
func (s *IngestService) download(ctx context.Context, meta *domain.Table, staging string) error {
	if !meta.HasColumn(domain.ColWebFilepath) {
		return nil
	}

	var pending []int
	for i := 0; i < meta.Len(); i++ {
		if meta.Get(i, domain.ColWebFilepath) != "" && meta.Get(i, domain.ColLocalRawFilepath) == "" {
			pending = append(pending, i)
		}
	}

	for n, i := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.sink.Emit(fmt.Sprintf("downloading file %d/%d", n, len(pending)))

		src := meta.Get(i, domain.ColWebFilepath)
		name := downloadName(src, meta.Get(i, domain.ColTextID))

		if err := s.fetcher.Fetch(ctx, src, filepath.Join(staging, "raw_files", name)); err != nil {
			logger.Warn("download failed for %s: %v", src, err)
			continue
		}
		meta.Set(i, domain.ColFilename, name)
		meta.Set(i, domain.ColLocalRawFilepath, filepath.Join("raw_files", name))
	}
	if len(pending) > 0 {
		s.sink.Emit(fmt.Sprintf("downloading file %d/%d", len(pending), len(pending)))
	}
	return nil
}

// downloadName derives a staged file name from a URL, falling back to the
// text id when the URL has no usable base name.
func downloadName(rawURL, textID string) string {
	base := ""
	if u, err := url.Parse(rawURL); err == nil {
		base = path.Base(u.Path)
	}
	if base == "" || base == "." || base == "/" || !domain.IsDocumentFile(base) {
		ext := strings.ToLower(path.Ext(base))
		if ext == "" {
			ext = ".pdf"
		}
		return "download_" + textID + ext
	}
	return base
}

// filterPages applies per-row page selections to staged PDFs. The filter is
// best effort; a skippable failure keeps the full document.
func (s *IngestService) filterPages(ctx context.Context, meta *domain.Table, staging string) error {
	if !meta.HasColumn(domain.ColPageNumbers) {
		return nil
	}

	for i := 0; i < meta.Len(); i++ {
		selector := meta.Get(i, domain.ColPageNumbers)
		raw := meta.Get(i, domain.ColLocalRawFilepath)
		if selector == "" || raw == "" || strings.ToLower(filepath.Ext(raw)) != ".pdf" {
			continue
		}
		if err := s.pageFilter.FilterPages(ctx, filepath.Join(staging, raw), selector); err != nil {
			if domain.IsSkippable(err) {
				logger.Warn("%v", err)
				continue
			}
			return err
		}
	}
	return nil
}

// convert turns every staged raw file into a text file. Rows marked
// force_ocr run in a second batch so the fast path is never blocked behind
// OCR work.
func (s *IngestService) convert(ctx context.Context, meta *domain.Table, staging string) error {
	var fast, slow []int
	for i := 0; i < meta.Len(); i++ {
		if meta.Get(i, domain.ColLocalRawFilepath) == "" {
			continue
		}
		if strings.EqualFold(meta.Get(i, domain.ColForceOCR), "true") {
			slow = append(slow, i)
		} else {
			fast = append(fast, i)
		}
	}

	total := len(fast) + len(slow)
	done := 0

	run := func(rows []int, opts driven.ConvertOptions) error {
		for _, i := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.sink.Emit(fmt.Sprintf("converting to text: file %d/%d", done, total))
			done++

			raw := meta.Get(i, domain.ColLocalRawFilepath)
			converter, err := s.converters.ForFile(raw)
			if err != nil {
				if errors.Is(err, domain.ErrUnsupportedType) {
					logger.Warn("skipping %s: %v", raw, err)
					continue
				}
				return err
			}

			text, err := converter.Convert(ctx, filepath.Join(staging, raw), opts)
			if err != nil {
				logger.Warn("conversion failed for %s: %v", raw, err)
				continue
			}

			// csv sources are carried through verbatim and keep their extension
			ext, isCSV := ".txt", "false"
			if strings.ToLower(filepath.Ext(raw)) == ".csv" {
				ext, isCSV = ".csv", "true"
			}
			rel := filepath.Join("txt_files", meta.Get(i, domain.ColTextID)+ext)
			if err := os.WriteFile(filepath.Join(staging, rel), []byte(text), 0o644); err != nil {
				return err
			}
			meta.Set(i, domain.ColLocalTxtFilepath, rel)
			meta.Set(i, domain.ColIsCSV, isCSV)
		}
		return nil
	}

	if err := run(fast, driven.ConvertOptions{}); err != nil {
		return err
	}
	if err := run(slow, driven.ConvertOptions{ForceOCR: true}); err != nil {
		return err
	}
	if total > 0 {
		s.sink.Emit(fmt.Sprintf("converting to text: file %d/%d", total, total))
	}
	return nil
}

// normalize writes the metadata tables and the text bundle into staging.
func (s *IngestService) normalize(meta *domain.Table, staging string) error {
	if err := writeTableFile(filepath.Join(staging, "metadata.csv"), meta); err != nil {
		return err
	}
	if err := writeTableFile(filepath.Join(staging, "metadata_clean.csv"), meta.Clean()); err != nil {
		return err
	}
	return zipDirectory(
		filepath.Join(staging, "txt_files"),
		filepath.Join(staging, "raw_text.zip"),
		filepath.Join(staging, "metadata_clean.csv"),
	)
}

// install swaps the staged tree into the corpus's final location and writes
// the external metadata copy. Replacing an existing corpus keeps the old
// tree until the new one is in place.
func (s *IngestService) install(corpus domain.Corpus, staging string, meta *domain.Table) error {
	dir := s.layout.Dir(corpus)
	old := dir + ".old"

	if _, err := os.Stat(dir); err == nil {
		os.RemoveAll(old)
		if err := os.Rename(dir, old); err != nil {
			return err
		}
	}
	if err := os.Rename(staging, dir); err != nil {
		// put the previous corpus back
		os.Rename(old, dir)
		return err
	}
	os.RemoveAll(old)

	return writeTableFile(s.layout.ExternalMetadata(corpus), meta.Clean())
}
