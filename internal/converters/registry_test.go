package converters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora-cli/internal/converters/csvfile"
	"github.com/custodia-labs/corpora-cli/internal/converters/plaintext"
	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

func TestRegistrySelectsByExtension(t *testing.T) {
	registry := NewRegistry(plaintext.New(), csvfile.New())

	c, err := registry.ForFile("/corpora/raw_files/letter.txt")
	require.NoError(t, err)
	assert.True(t, c.Supports(".txt"))

	c, err = registry.ForFile("/corpora/raw_files/TABLE.CSV")
	require.NoError(t, err)
	assert.True(t, c.Supports(".csv"))
}

func TestRegistryUnsupportedExtension(t *testing.T) {
	registry := NewRegistry(plaintext.New())

	_, err := registry.ForFile("scan.tiff")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestUnsupportedPageFilterIsSkippable(t *testing.T) {
	filter := NewUnsupportedPageFilter()

	err := filter.FilterPages(context.Background(), "doc.pdf", "1,3-5")
	require.Error(t, err)
	assert.True(t, domain.IsSkippable(err))
}
