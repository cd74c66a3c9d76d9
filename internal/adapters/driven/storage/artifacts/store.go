// Package artifacts stores cached analysis results as files under a
// corpus's csv_outputs directory. A result exists exactly when its file
// does; invalidation is file deletion.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpora-cli/internal/logger"
)

// FSStore implements driven.ArtifactStore on the filesystem.
type FSStore struct {
	layout domain.Layout
}

var _ driven.ArtifactStore = (*FSStore)(nil)

// New returns a store rooted at the given corpus layout.
func New(layout domain.Layout) *FSStore {
	return &FSStore{layout: layout}
}

// Exists reports whether the artifact file is present.
func (s *FSStore) Exists(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) bool {
	info, err := os.Stat(s.Path(corpus, kind))
	return err == nil && !info.IsDir()
}

// Read returns the cached bytes, or domain.ErrMissingArtifact.
func (s *FSStore) Read(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) ([]byte, error) {
	data, err := os.ReadFile(s.Path(corpus, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %s: %w", kind, domain.ErrMissingArtifact)
		}
		return nil, fmt.Errorf("reading artifact %s: %w", kind, err)
	}
	return data, nil
}

// Write stores the artifact, creating csv_outputs on first use.
func (s *FSStore) Write(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind, data []byte) error {
	path := s.Path(corpus, kind)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", kind, err)
	}
	logger.Debug("artifact written: %s", path)
	return nil
}

// Invalidate removes the artifact file, if present.
func (s *FSStore) Invalidate(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) error {
	err := os.Remove(s.Path(corpus, kind))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("invalidating artifact %s: %w", kind, err)
	}
	return nil
}

// Path returns the artifact's on-disk location.
func (s *FSStore) Path(corpus domain.Corpus, kind domain.ArtifactKind) string {
	return filepath.Join(s.layout.CSVOutputs(corpus), kind.Filename())
}
