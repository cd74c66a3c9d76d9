package converters

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// Ensure UnsupportedPageFilter implements the interface.
var _ driven.PageFilter = (*UnsupportedPageFilter)(nil)

// UnsupportedPageFilter is the default PageFilter when no PDF toolkit is
// wired in. It always fails skippably, so ingestion proceeds with the
// full document.
type UnsupportedPageFilter struct{}

// NewUnsupportedPageFilter creates the default page filter.
func NewUnsupportedPageFilter() *UnsupportedPageFilter {
	return &UnsupportedPageFilter{}
}

// FilterPages reports that page selection is unavailable.
func (*UnsupportedPageFilter) FilterPages(_ context.Context, path, selector string) error {
	return domain.Skippable("page filtering",
		fmt.Errorf("no page filter available for %s (pages %s)", path, selector))
}
