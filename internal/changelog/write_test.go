package changelog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing string
		content  string
	}{
		"creates missing file": {
			content: "# Changelog",
		},
		"overwrites previous content in full": {
			existing: "# Changelog\n\nold content that is much longer than the new one",
			content:  "# Changelog",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "CHANGELOG.md")
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0o644))
			}

			require.NoError(t, WriteFile(path, tt.content))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(got))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary file must not be left behind")
		})
	}
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "CHANGELOG.md")
	err := WriteFile(path, "x")
	assert.Error(t, err)
}

func TestInSync(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")

	ok, err := InSync(path, "content")
	require.NoError(t, err)
	assert.False(t, ok, "missing file is out of sync")

	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	ok, err = InSync(path, "content")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = InSync(path, "content\n")
	require.NoError(t, err)
	assert.False(t, ok)
}
