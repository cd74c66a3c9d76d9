package services

import (
	"context"
	"os"
	"path/filepath"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpora-cli/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService manages registered corpora and keeps the registry and the
// filesystem in agreement.
type CorpusService struct {
	layout   domain.Layout
	registry driven.CorpusRegistry
}

// NewCorpusService creates a corpus service.
func NewCorpusService(layout domain.Layout, registry driven.CorpusRegistry) *CorpusService {
	return &CorpusService{layout: layout, registry: registry}
}

// List returns the owner's corpus names.
func (s *CorpusService) List(ctx context.Context, owner string) ([]string, error) {
	return s.registry.List(ctx, owner)
}

// Metadata returns the corpus's caller-facing metadata table.
func (s *CorpusService) Metadata(ctx context.Context, session domain.Session) (*domain.Table, error) {
	corpus := session.Scoped()
	if _, err := s.registry.Lookup(ctx, corpus.DirName()); err != nil {
		return nil, err
	}
	return loadCleanMetadata(s.layout, corpus)
}

// Delete removes the registry row, the corpus tree and the external
// metadata copy. Paths already gone are tolerated; the registry row is
// what matters.
func (s *CorpusService) Delete(ctx context.Context, session domain.Session) error {
	corpus := session.Scoped()
	if err := s.registry.Remove(ctx, corpus.DirName()); err != nil {
		return err
	}
	if err := os.RemoveAll(s.layout.Dir(corpus)); err != nil {
		logger.Warn("deleting %s: %v", s.layout.Dir(corpus), err)
	}
	if err := os.Remove(s.layout.ExternalMetadata(corpus)); err != nil && !os.IsNotExist(err) {
		logger.Warn("deleting external metadata: %v", err)
	}
	logger.Info("deleted corpus %s", corpus.DirName())
	return nil
}

// GCSweep reconciles the registry with the filesystem. Orphaned corpus
// directories are deleted; registry rows whose corpus fails the validity
// check are dropped along with their paths.
func (s *CorpusService) GCSweep(ctx context.Context) (*driving.GCReport, error) {
	report := &driving.GCReport{}

	entries, err := s.registry.Entries(ctx)
	if err != nil {
		return nil, err
	}
	registered := make(map[string]bool, len(entries))
	for _, e := range entries {
		registered[e.Name] = true
	}

	// orphaned directories
	dirs, err := os.ReadDir(s.layout.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return nil, err
	}
	for _, d := range dirs {
		if !d.IsDir() || d.Name() == "metadata" || d.Name() == "tmp" {
			continue
		}
		if !registered[d.Name()] {
			logger.Debug("gc: removing orphan directory %s", d.Name())
			if err := os.RemoveAll(filepath.Join(s.layout.Root, d.Name())); err != nil {
				logger.Warn("gc: %v", err)
				continue
			}
			report.OrphansRemoved++
		}
	}

	// invalid registry rows
	for _, e := range entries {
		if s.validDir(e.Name) {
			continue
		}
		logger.Debug("gc: dropping invalid corpus %s", e.Name)
		if err := s.registry.Remove(ctx, e.Name); err != nil {
			return nil, err
		}
		os.RemoveAll(filepath.Join(s.layout.Root, e.Name))
		external := filepath.Join(s.layout.Root, "metadata_"+e.Name+".csv")
		if err := os.Remove(external); err != nil && !os.IsNotExist(err) {
			logger.Warn("gc: %v", err)
		}
		report.InvalidRemoved++
	}

	logger.Info("gc sweep removed %d orphans, %d invalid corpora",
		report.OrphansRemoved, report.InvalidRemoved)
	return report, nil
}

// Valid reports whether the session's corpus passes the sweep's validity
// check: a clean-metadata file plus at least one non-empty text file.
func (s *CorpusService) Valid(ctx context.Context, session domain.Session) bool {
	return s.validDir(session.Scoped().DirName())
}

func (s *CorpusService) validDir(name string) bool {
	dir := filepath.Join(s.layout.Root, name)
	if _, err := os.Stat(filepath.Join(dir, "metadata_clean.csv")); err != nil {
		return false
	}
	return hasNonEmptyText(filepath.Join(dir, "txt_files"))
}
