// Package driving defines the interfaces through which callers (CLI or
// other frontends) drive the core services: ingestion, corpus management,
// transformation, search and analysis.
package driving
