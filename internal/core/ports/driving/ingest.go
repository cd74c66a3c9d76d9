package driving

import (
	"context"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// IngestReport is the outcome of a completed ingestion run.
type IngestReport struct {
	// Corpus is the registered corpus.
	Corpus domain.Corpus

	// TextCount is the number of metadata rows (documents).
	TextCount int

	// UsableText reports whether at least one non-empty text file was
	// produced. A false value is the "ran but produced no usable text"
	// outcome, not an error.
	UsableText bool
}

// IngestionService runs the upload-to-registered-corpus pipeline.
type IngestionService interface {
	// Ingest stages, converts, normalises and registers an upload under
	// the session owner's corpus name. Progress lines go to the supplied
	// sink. On failure the staging directory is removed, the registry is
	// untouched and the error is a *domain.IngestionError.
	Ingest(ctx context.Context, session domain.Session, uploadPath string) (*IngestReport, error)
}
