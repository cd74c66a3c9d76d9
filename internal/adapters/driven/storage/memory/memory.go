// Package memory provides in-memory implementations of the storage ports
// for tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

// Registry is an in-memory driven.CorpusRegistry.
type Registry struct {
	mu      sync.Mutex
	entries []domain.RegistryEntry
}

var _ driven.CorpusRegistry = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an entry, de-duplicating by full row equality.
func (r *Registry) Register(ctx context.Context, entry domain.RegistryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e == entry {
			return nil
		}
	}
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns every row.
func (r *Registry) Entries(ctx context.Context) ([]domain.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RegistryEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

// List returns the owner's corpus names, prefix stripped and sorted.
func (r *Registry) List(ctx context.Context, owner string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := owner + "_"
	var names []string
	for _, e := range r.entries {
		if rest, ok := strings.CutPrefix(e.Name, prefix); ok {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Lookup returns the entry for a full corpus name.
func (r *Registry) Lookup(ctx context.Context, name string) (*domain.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Name == name {
			entry := e
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("corpus %q: %w", name, domain.ErrNotFound)
}

// Remove deletes the row for a full corpus name, if present.
func (r *Registry) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

// ArtifactStore is an in-memory driven.ArtifactStore. It counts writes per
// artifact so tests can assert that cached results are not recomputed.
type ArtifactStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	Writes map[string]int
}

var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// NewArtifactStore returns an empty store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		data:   make(map[string][]byte),
		Writes: make(map[string]int),
	}
}

func key(corpus domain.Corpus, kind domain.ArtifactKind) string {
	return corpus.DirName() + "/" + kind.Filename()
}

// Exists reports whether the artifact is cached.
func (s *ArtifactStore) Exists(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key(corpus, kind)]
	return ok
}

// Read returns the cached bytes, or domain.ErrMissingArtifact.
func (s *ArtifactStore) Read(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key(corpus, kind)]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", kind, domain.ErrMissingArtifact)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores the artifact and bumps its write counter.
func (s *ArtifactStore) Write(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(corpus, kind)
	stored := make([]byte, len(data))
	copy(stored, data)
	s.data[k] = stored
	s.Writes[k]++
	return nil
}

// Invalidate removes the artifact.
func (s *ArtifactStore) Invalidate(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key(corpus, kind))
	return nil
}

// Path returns a synthetic location for the artifact.
func (s *ArtifactStore) Path(corpus domain.Corpus, kind domain.ArtifactKind) string {
	return "memory://" + key(corpus, kind)
}

// WriteCount returns how many times the artifact was written.
func (s *ArtifactStore) WriteCount(corpus domain.Corpus, kind domain.ArtifactKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Writes[key(corpus, kind)]
}

// RecorderSink is a driven.ProgressSink that records every emitted line.
type RecorderSink struct {
	mu     sync.Mutex
	Lines  []string
	Resets int
}

var _ driven.ProgressSink = (*RecorderSink)(nil)

// NewRecorderSink returns an empty recorder.
func NewRecorderSink() *RecorderSink {
	return &RecorderSink{}
}

// Emit records the line.
func (s *RecorderSink) Emit(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lines = append(s.Lines, line)
}

// Reset records the reset.
func (s *RecorderSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Resets++
}

// Recorded returns a copy of the emitted lines.
func (s *RecorderSink) Recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Lines))
	copy(out, s.Lines)
	return out
}
