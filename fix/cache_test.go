package fix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "prog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("methods: []\n"), 0o644))

	c := newFileCache()
	hash, err := getFileHash(path)
	require.NoError(t, err)
	assert.False(t, c.unchanged(path, hash))

	c.set(path, hash)
	assert.True(t, c.unchanged(path, hash))

	require.NoError(t, os.WriteFile(path, []byte("methods: [{name: m}]\n"), 0o644))
	changed, err := getFileHash(path)
	require.NoError(t, err)
	assert.NotEqual(t, hash, changed)
	assert.False(t, c.unchanged(path, changed))

	c.invalidate(path)
	assert.False(t, c.unchanged(path, hash))

	_, err = getFileHash(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
