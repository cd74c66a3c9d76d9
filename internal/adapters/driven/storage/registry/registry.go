// Package registry stores the corpora table as a flat CSV file under
// metadata/corpora_list.csv. The file is the single source of truth for
// which corpora exist; directories on disk without a row here are orphans.
package registry

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpora-cli/internal/logger"
)

var header = []string{"name", "text_path", "metadata_path"}

// CSVRegistry implements driven.CorpusRegistry on a flat CSV file.
// Every write rewrites the whole table to a temp file and renames it into
// place; a mutex serializes writers within the process.
type CSVRegistry struct {
	mu   sync.Mutex
	path string
}

var _ driven.CorpusRegistry = (*CSVRegistry)(nil)

// New returns a registry backed by the CSV file at path. The file and its
// parent directory are created on first write.
func New(path string) *CSVRegistry {
	return &CSVRegistry{path: path}
}

// Register appends an entry and persists the table. Registering an entry
// identical to an existing row is a no-op.
func (r *CSVRegistry) Register(ctx context.Context, entry domain.RegistryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e == entry {
			logger.Debug("registry: %s already registered", entry.Name)
			return nil
		}
	}

	entries = append(entries, entry)
	return r.store(entries)
}

// Entries returns every registry row.
func (r *CSVRegistry) Entries(ctx context.Context) ([]domain.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// List returns the owner's corpus names with the "{owner}_" prefix
// stripped, sorted.
func (r *CSVRegistry) List(ctx context.Context, owner string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}

	prefix := owner + "_"
	var names []string
	for _, e := range entries {
		if rest, ok := strings.CutPrefix(e.Name, prefix); ok {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Lookup returns the entry for a full corpus name.
func (r *CSVRegistry) Lookup(ctx context.Context, name string) (*domain.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Name == name {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("corpus %q: %w", name, domain.ErrNotFound)
}

// Remove deletes the row for a full corpus name, if present.
func (r *CSVRegistry) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return r.store(kept)
}

// load reads the table; a missing file is an empty table.
func (r *CSVRegistry) load() ([]domain.RegistryEntry, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var entries []domain.RegistryEntry
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == header[0] {
			continue
		}
		if len(rec) < 3 {
			continue
		}
		entries = append(entries, domain.RegistryEntry{
			Name:         rec[0],
			TextPath:     rec[1],
			MetadataPath: rec[2],
		})
	}
	return entries, nil
}

// store writes the whole table to a temp file in the same directory and
// renames it over the registry, so readers never observe a partial file.
func (r *CSVRegistry) store(entries []domain.RegistryEntry) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "corpora_list_*.csv")
	if err != nil {
		return fmt.Errorf("creating temp registry: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing registry header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Name, e.TextPath, e.MetadataPath}); err != nil {
			tmp.Close()
			return fmt.Errorf("writing registry row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp registry: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}
