package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Corpus identifies an owner-scoped document collection.
// The on-disk directory name is "{owner}_{name}".
type Corpus struct {
	// Owner is the owner id (lower case, underscores).
	Owner string

	// Name is the corpus name, unique per owner.
	Name string
}

// DirName returns the registry-facing corpus name.
func (c Corpus) DirName() string {
	return c.Owner + "_" + c.Name
}

// ValidateCorpusName checks that a corpus name is usable as a directory
// and registry key: lower case, no spaces.
func ValidateCorpusName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty corpus name", ErrInvalidInput)
	}
	if strings.ContainsAny(name, " \t/") || name != strings.ToLower(name) {
		return fmt.Errorf("%w: corpus name must be lower case with underscores instead of spaces", ErrInvalidInput)
	}
	return nil
}

// Layout resolves every path inside a corpora root directory.
// All components share one layout so the registry, the ingestion pipeline
// and the analysis drivers always agree on where files live.
type Layout struct {
	// Root is the corpora root directory.
	Root string
}

// Dir returns the corpus directory.
func (l Layout) Dir(c Corpus) string {
	return filepath.Join(l.Root, c.DirName())
}

// RegistryFile returns the flat corpora table path.
func (l Layout) RegistryFile() string {
	return filepath.Join(l.Root, "metadata", "corpora_list.csv")
}

// ExternalMetadata returns the corpus's metadata copy outside its directory.
func (l Layout) ExternalMetadata(c Corpus) string {
	return filepath.Join(l.Root, "metadata_"+c.DirName()+".csv")
}

// StagingDir returns a staging directory for one ingestion request.
// The request id keeps concurrent ingestions by the same owner apart.
func (l Layout) StagingDir(owner, requestID string) string {
	return filepath.Join(l.Root, "tmp", owner+"_"+requestID)
}

// Metadata returns the authoritative metadata table path.
func (l Layout) Metadata(c Corpus) string {
	return filepath.Join(l.Dir(c), "metadata.csv")
}

// CleanMetadata returns the caller-facing metadata table path.
func (l Layout) CleanMetadata(c Corpus) string {
	return filepath.Join(l.Dir(c), "metadata_clean.csv")
}

// RawFiles returns the raw document directory.
func (l Layout) RawFiles(c Corpus) string {
	return filepath.Join(l.Dir(c), "raw_files")
}

// TxtFiles returns the converted text directory.
func (l Layout) TxtFiles(c Corpus) string {
	return filepath.Join(l.Dir(c), "txt_files")
}

// TransformedTxtFiles returns the post-transformation text directory.
func (l Layout) TransformedTxtFiles(c Corpus) string {
	return filepath.Join(l.Dir(c), "transformed_txt_files")
}

// CSVOutputs returns the artifact directory.
func (l Layout) CSVOutputs(c Corpus) string {
	return filepath.Join(l.Dir(c), "csv_outputs")
}

// TextFile returns the converted text file for a text id.
func (l Layout) TextFile(c Corpus, textID int) string {
	return filepath.Join(l.TxtFiles(c), fmt.Sprintf("%d.txt", textID))
}

// CSVTextFile returns the carried-through table file for a csv-sourced
// text id.
func (l Layout) CSVTextFile(c Corpus, textID int) string {
	return filepath.Join(l.TxtFiles(c), fmt.Sprintf("%d.csv", textID))
}

// TransformedTextFile returns the transformed text file for a text id.
func (l Layout) TransformedTextFile(c Corpus, textID int) string {
	return filepath.Join(l.TransformedTxtFiles(c), fmt.Sprintf("transformed_%d.txt", textID))
}

// RawTextZip returns the converted-text convenience bundle path.
func (l Layout) RawTextZip(c Corpus) string {
	return filepath.Join(l.Dir(c), "raw_text.zip")
}

// TransformedTextZip returns the transformed-text convenience bundle path.
func (l Layout) TransformedTextZip(c Corpus) string {
	return filepath.Join(l.Dir(c), "transformed_text.zip")
}

// SpecFile returns the path of a caller-supplied input spec
// (search_terms.csv, exclude_list.csv, ...).
func (l Layout) SpecFile(c Corpus, name string) string {
	return filepath.Join(l.Dir(c), name)
}

// Input spec file names.
const (
	SpecSearchTerms            = "search_terms.csv"
	SpecSecondLevelSearchTerms = "second_level_search_terms.csv"
	SpecExcludeOccurrences     = "exclude_occurrences.csv"
	SpecPrepunctuationList     = "prepunctuation_list.csv"
	SpecPostpunctuationList    = "postpunctuation_list.csv"
	SpecExcludeList            = "exclude_list.csv"
)

// Session carries the acting owner and their selected corpus through every
// call. There is no ambient "current user" state anywhere in the system.
type Session struct {
	// Owner is the owner id.
	Owner string

	// Corpus is the selected corpus name (without owner prefix).
	Corpus string
}

// Scoped returns the session's corpus identity.
func (s Session) Scoped() Corpus {
	return Corpus{Owner: s.Owner, Name: s.Corpus}
}
