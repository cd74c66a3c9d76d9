package driven

import (
	"context"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// CorpusRegistry persists the flat corpora table. Implementations must make
// Register atomic with respect to concurrent callers in this process:
// the table is rewritten whole (read-modify-write), so unserialized writers
// would lose rows.
type CorpusRegistry interface {
	// Register appends an entry, de-duplicating by full row equality, and
	// persists the whole table.
	Register(ctx context.Context, entry domain.RegistryEntry) error

	// Entries returns every registry row.
	Entries(ctx context.Context) ([]domain.RegistryEntry, error)

	// List returns corpus names for an owner (prefix match on "{owner}_"),
	// with the owner prefix stripped.
	List(ctx context.Context, owner string) ([]string, error)

	// Lookup returns the entry for a full corpus name.
	// Returns domain.ErrNotFound when absent.
	Lookup(ctx context.Context, name string) (*domain.RegistryEntry, error)

	// Remove deletes the row for a full corpus name. Removing an absent
	// row is not an error.
	Remove(ctx context.Context, name string) error
}
