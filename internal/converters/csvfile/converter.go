package csvfile

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Converter passes CSV documents through untouched. Tabular corpora keep
// their structure; the text pipeline stores the raw CSV body so downstream
// consumers can parse it themselves.
type Converter struct{}

// New creates a new CSV passthrough converter.
func New() *Converter {
	return &Converter{}
}

// Supports reports whether the extension is csv.
func (c *Converter) Supports(ext string) bool {
	return ext == ".csv"
}

// Convert returns the file content verbatim.
func (c *Converter) Convert(_ context.Context, path string, _ driven.ConvertOptions) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
