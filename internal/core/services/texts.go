package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// docText is one corpus document loaded for analysis.
type docText struct {
	ID   int
	Text string
}

// loadCleanMetadata reads the caller-facing metadata table.
func loadCleanMetadata(layout domain.Layout, corpus domain.Corpus) (*domain.Table, error) {
	t, err := readTableFile(layout.CleanMetadata(corpus))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("corpus %s has no metadata: %w", corpus.DirName(), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	return t, nil
}

// loadTexts returns the corpus documents in text-id order, preferring the
// transformed rendition of each document when one exists. With a non-empty
// subset only those ids are returned.
func loadTexts(layout domain.Layout, corpus domain.Corpus, subset []int) ([]docText, error) {
	meta, err := loadCleanMetadata(layout, corpus)
	if err != nil {
		return nil, err
	}

	wanted := make(map[int]bool, len(subset))
	for _, id := range subset {
		wanted[id] = true
	}

	var docs []docText
	for _, id := range meta.TextIDs() {
		if len(wanted) > 0 && !wanted[id] {
			continue
		}
		text, err := loadText(layout, corpus, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, docText{ID: id, Text: text})
	}
	return docs, nil
}

// loadText reads one document: transformed rendition first, then the
// converted text, then the carried-through csv table.
func loadText(layout domain.Layout, corpus domain.Corpus, textID int) (string, error) {
	if data, err := os.ReadFile(layout.TransformedTextFile(corpus, textID)); err == nil {
		return string(data), nil
	}
	data, err := os.ReadFile(layout.TextFile(corpus, textID))
	if os.IsNotExist(err) {
		data, err = os.ReadFile(layout.CSVTextFile(corpus, textID))
	}
	if err != nil {
		if os.IsNotExist(err) {
			// rows can legitimately lack text (blocked download)
			return "", nil
		}
		return "", fmt.Errorf("reading text %d: %w", textID, err)
	}
	return string(data), nil
}
