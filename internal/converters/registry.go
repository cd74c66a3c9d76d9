package converters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ConverterRegistry = (*Registry)(nil)

// Registry selects a converter by file extension. First registered match
// wins.
type Registry struct {
	converters []driven.Converter
}

// NewRegistry creates a registry holding the given converters.
func NewRegistry(converters ...driven.Converter) *Registry {
	return &Registry{converters: converters}
}

// Register adds a converter.
func (r *Registry) Register(c driven.Converter) {
	r.converters = append(r.converters, c)
}

// ForFile returns a converter for the file's extension.
func (r *Registry) ForFile(path string) (driven.Converter, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range r.converters {
		if c.Supports(ext) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no converter for %q: %w", ext, domain.ErrUnsupportedType)
}
