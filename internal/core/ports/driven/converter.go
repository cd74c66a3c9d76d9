package driven

import (
	"context"
)

// ConvertOptions tune a single document conversion.
type ConvertOptions struct {
	// ForceOCR requests the slow OCR path for scanned documents.
	ForceOCR bool
}

// Converter turns one raw document file into plain text. The heavy
// conversion/OCR machinery is an external collaborator; in-tree converters
// cover the trivial formats (plain text, csv passthrough).
type Converter interface {
	// Supports reports whether the converter handles a file extension
	// (lower case, with dot).
	Supports(ext string) bool

	// Convert extracts text from the file at path.
	Convert(ctx context.Context, path string, opts ConvertOptions) (string, error)
}

// ConverterRegistry selects a converter for a file.
type ConverterRegistry interface {
	// ForFile returns a converter for the file's extension.
	// Returns domain.ErrUnsupportedType when none applies.
	ForFile(path string) (Converter, error)
}

// PageFilter restricts a source PDF to a listed page selection before
// conversion. Failure to restrict is a best-effort enhancement: callers
// receive a domain.SkippableError and proceed with the full document.
type PageFilter interface {
	// FilterPages rewrites the file at path to the pages in selector
	// (e.g. "1,3-5").
	FilterPages(ctx context.Context, path, selector string) error
}

// Fetcher downloads a document referenced by URL into a local file.
type Fetcher interface {
	// Fetch writes the body of url to dest.
	Fetch(ctx context.Context, url, dest string) error
}
