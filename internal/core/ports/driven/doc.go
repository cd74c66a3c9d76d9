// Package driven defines the interfaces the core services depend on:
// storage (registry, artifacts), document conversion, network fetching,
// NLP collaborators, workbook writing, configuration and progress
// reporting. Adapters implement these interfaces.
package driven
