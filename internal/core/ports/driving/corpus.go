package driving

import (
	"context"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// GCReport summarises one garbage-collection sweep.
type GCReport struct {
	// OrphansRemoved counts unregistered directories deleted.
	OrphansRemoved int

	// InvalidRemoved counts registry rows dropped (and their paths
	// best-effort deleted) for failing the validity check.
	InvalidRemoved int
}

// CorpusService manages registered corpora.
type CorpusService interface {
	// List returns the owner's corpus names.
	List(ctx context.Context, owner string) ([]string, error)

	// Metadata returns the corpus's caller-facing metadata table.
	Metadata(ctx context.Context, session domain.Session) (*domain.Table, error)

	// Delete removes the registry row, the corpus directory tree and the
	// external metadata copy. Missing paths are tolerated.
	Delete(ctx context.Context, session domain.Session) error

	// GCSweep reconciles the registry and the filesystem: orphaned
	// directories are deleted and invalid rows are dropped. After a sweep,
	// a row exists iff its corpus has a clean-metadata file and at least
	// one non-empty text file.
	GCSweep(ctx context.Context) (*GCReport, error)

	// Valid reports whether the session's corpus passes the validity
	// check used by the sweep.
	Valid(ctx context.Context, session domain.Session) bool
}
