package driving

import (
	"context"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// RunOptions are shared by every memoized analysis driver.
type RunOptions struct {
	// Force recomputes and overwrites even when the artifact exists.
	Force bool

	// TextIDs restricts the computation to a document subset.
	// Empty means the whole corpus.
	TextIDs []int

	// GroupBy is a metadata column; the analysis is computed once per
	// distinct value, tagged, and concatenated. Empty means ungrouped.
	GroupBy string
}

// TopOptions configure top-words / top-entities runs.
type TopOptions struct {
	RunOptions

	// N is the number of top items to keep.
	N int
}

// AnalysisService runs the memoized corpus analyses. Every method follows
// the artifact-cache protocol: serve the stored result unless Force is set.
type AnalysisService interface {
	// TopWords returns the top-n token counts.
	TopWords(ctx context.Context, session domain.Session, opts TopOptions) (*domain.Table, error)

	// TopEntities returns the top-n entity counts.
	TopEntities(ctx context.Context, session domain.Session, opts TopOptions) (*domain.Table, error)

	// Sentiment returns per-document sentiment aggregates.
	Sentiment(ctx context.Context, session domain.Session, opts RunOptions) (*domain.Table, error)

	// SentimentReport returns a sentence-by-sentence breakdown for a text
	// id or, when input does not parse as an id, for the raw input string.
	SentimentReport(ctx context.Context, session domain.Session, input string) (*domain.Table, error)

	// SummaryStats returns per-document summary statistics.
	SummaryStats(ctx context.Context, session domain.Session, opts RunOptions) (*domain.Table, error)

	// Similarity returns the pairwise document similarity matrix labelled
	// by a metadata column.
	Similarity(ctx context.Context, session domain.Session, labelColumn string, opts RunOptions) (*domain.Table, error)
}
