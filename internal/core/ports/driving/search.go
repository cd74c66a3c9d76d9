package driving

import (
	"context"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// SearchService runs the hierarchical search-term engine over a corpus.
// Specs are read from the corpus's uploaded spec files; results are cached
// artifacts.
type SearchService interface {
	// Run executes occurrence extraction, exclusion filtering,
	// per-grouping-column counts, co-occurrence collection and (when the
	// second-level spec exists) second-level counting, writing each result
	// artifact. Run always recomputes.
	Run(ctx context.Context, session domain.Session, params domain.SearchParams) error

	// Workbook produces the grouped binary-coverage workbook for a
	// tab-partition column of the search spec and a metadata aggregation
	// column. Requires a prior Run and a second-level spec.
	Workbook(ctx context.Context, session domain.Session, tabColumn, metadataColumn string) error

	// Individual counts standalone-token occurrences of one term per
	// document, optionally grouped (summed) by a metadata column, and
	// caches the result.
	Individual(ctx context.Context, session domain.Session, term, groupBy string) (*domain.Table, error)
}
