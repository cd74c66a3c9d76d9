package domain

// RegistryEntry is one row of the corpora table.
// An entry exists iff the corpus is valid; the GC sweep enforces this.
type RegistryEntry struct {
	// Name is the full corpus name ("{owner}_{corpus}").
	Name string

	// TextPath is the corpus directory.
	TextPath string

	// MetadataPath is the external clean-metadata copy.
	MetadataPath string
}
