package driving

import (
	"context"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// TransformService rewrites every text record through the selected
// transformations, producing the transformed text set and invalidating
// downstream analysis artifacts.
type TransformService interface {
	// Transform applies opts to every document, writes
	// transformed_txt_files/, rebuilds transformed_text.zip and
	// invalidates cached analysis artifacts.
	Transform(ctx context.Context, session domain.Session, opts domain.TransformOptions) error
}
