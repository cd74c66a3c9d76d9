package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

func newTestRegistry(t *testing.T) *CSVRegistry {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "metadata", "corpora_list.csv"))
}

func TestRegisterAndLookup(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	entry := domain.RegistryEntry{
		Name:         "alice_novels",
		TextPath:     "corpora/alice_novels/txt_files/",
		MetadataPath: "corpora/alice_novels/metadata.csv",
	}
	require.NoError(t, reg.Register(ctx, entry))

	got, err := reg.Lookup(ctx, "alice_novels")
	require.NoError(t, err)
	assert.Equal(t, entry, *got)
}

func TestLookupNotFound(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Lookup(context.Background(), "nobody_nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterDeduplicatesIdenticalRows(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	entry := domain.RegistryEntry{Name: "alice_novels", TextPath: "t", MetadataPath: "m"}
	require.NoError(t, reg.Register(ctx, entry))
	require.NoError(t, reg.Register(ctx, entry))

	entries, err := reg.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListStripsOwnerPrefix(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"alice_novels", "alice_letters", "bob_novels"} {
		require.NoError(t, reg.Register(ctx, domain.RegistryEntry{Name: name, TextPath: "t", MetadataPath: "m"}))
	}

	names, err := reg.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"letters", "novels"}, names)
}

func TestRemove(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, domain.RegistryEntry{Name: "alice_novels", TextPath: "t", MetadataPath: "m"}))
	require.NoError(t, reg.Remove(ctx, "alice_novels"))

	_, err := reg.Lookup(ctx, "alice_novels")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// removing an absent row is not an error
	assert.NoError(t, reg.Remove(ctx, "alice_novels"))
}

func TestStoreWritesHeaderAndSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpora_list.csv")
	ctx := context.Background()

	reg := New(path)
	require.NoError(t, reg.Register(ctx, domain.RegistryEntry{Name: "alice_novels", TextPath: "t", MetadataPath: "m"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "name,text_path,metadata_path\n"))

	// a fresh instance reads the same table back
	entries, err := New(path).Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice_novels", entries[0].Name)
}

func TestMissingFileIsEmptyTable(t *testing.T) {
	reg := newTestRegistry(t)

	entries, err := reg.Entries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
