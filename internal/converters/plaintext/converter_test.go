package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
)

func TestConvertNormalisesLineEndings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\rthree\n"), 0o644))

	text, err := New().Convert(context.Background(), path, driven.ConvertOptions{})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", text)
}

func TestConvertMissingFile(t *testing.T) {
	_, err := New().Convert(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), driven.ConvertOptions{})
	assert.Error(t, err)
}

func TestSupports(t *testing.T) {
	c := New()
	assert.True(t, c.Supports(".txt"))
	assert.False(t, c.Supports(".pdf"))
}
