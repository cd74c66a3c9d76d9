package driven

import (
	"context"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// ArtifactStore caches analysis results per (corpus, kind). Presence of the
// artifact is the sole cache-hit signal; there are no freshness timestamps.
// Any parameter change that should invalidate a result must be accompanied
// by an explicit Invalidate before recomputation.
type ArtifactStore interface {
	// Exists reports whether the artifact is cached.
	Exists(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) bool

	// Read returns the cached bytes.
	// Returns domain.ErrMissingArtifact when absent.
	Read(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) ([]byte, error)

	// Write stores (overwrites) the artifact.
	Write(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind, data []byte) error

	// Invalidate removes the artifact. Removing an absent artifact is not
	// an error.
	Invalidate(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) error

	// Path returns the artifact's on-disk location, whether or not it
	// exists yet. Writers that stream (workbooks) use this directly.
	Path(corpus domain.Corpus, kind domain.ArtifactKind) string
}
