package domain

import (
	"archive/zip"
	"fmt"
	"path/filepath"
	"strings"
)

// UploadShape is the closed set of upload forms the ingestion pipeline
// accepts. The shape is resolved once, before any staging work begins;
// nothing downstream re-sniffs file names.
type UploadShape int

const (
	// UploadMetadataTable is a single tabular file whose rows describe
	// documents (usually by web_filepath).
	UploadMetadataTable UploadShape = iota

	// UploadSingleDocument is one document of a supported kind.
	UploadSingleDocument

	// UploadArchiveWithMetadata is a zip bundle containing a metadata table.
	UploadArchiveWithMetadata

	// UploadArchiveWithoutMetadata is a zip bundle of bare documents;
	// metadata is synthesized from the file listing.
	UploadArchiveWithoutMetadata
)

// String returns a human-readable shape name.
func (s UploadShape) String() string {
	switch s {
	case UploadMetadataTable:
		return "metadata table"
	case UploadSingleDocument:
		return "single document"
	case UploadArchiveWithMetadata:
		return "archive with metadata"
	case UploadArchiveWithoutMetadata:
		return "archive without metadata"
	default:
		return "unknown"
	}
}

// Upload is a classified upload ready for staging.
type Upload struct {
	// Path is the uploaded file's location.
	Path string

	// Shape is the resolved upload shape.
	Shape UploadShape
}

// documentExtensions are the raw document kinds conversion understands.
var documentExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
	".mp3":  true,
	".mp4":  true,
}

// IsDocumentFile reports whether a file name looks like a convertible
// document.
func IsDocumentFile(name string) bool {
	return documentExtensions[strings.ToLower(filepath.Ext(name))]
}

// DetectUpload classifies an upload by its extension, opening zip archives
// to check for an embedded metadata table.
func DetectUpload(path string) (Upload, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".csv":
		return Upload{Path: path, Shape: UploadMetadataTable}, nil
	case documentExtensions[ext]:
		return Upload{Path: path, Shape: UploadSingleDocument}, nil
	case ext == ".zip":
		withMeta, err := zipHasMetadata(path)
		if err != nil {
			return Upload{}, err
		}
		if withMeta {
			return Upload{Path: path, Shape: UploadArchiveWithMetadata}, nil
		}
		return Upload{Path: path, Shape: UploadArchiveWithoutMetadata}, nil
	default:
		return Upload{}, fmt.Errorf("%w: upload %q", ErrUnsupportedType, filepath.Base(path))
	}
}

// zipHasMetadata reports whether the archive's top level contains a CSV
// metadata table.
func zipHasMetadata(path string) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.Name
		if strings.HasPrefix(name, "__MACOSX/") {
			continue
		}
		// only the archive root, not corpus/ subdirectories
		if !strings.Contains(strings.Trim(name, "/"), "/") && strings.HasSuffix(strings.ToLower(name), ".csv") {
			return true, nil
		}
	}
	return false, nil
}
