// Package domain contains the core business entities for the Corpora CLI:
// corpora, text records and metadata tables, the registry row shape,
// artifact kinds, search-term specs and upload shapes. It has no
// dependencies on adapters or external services.
package domain
