package perms

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestReadableRoundTrip(t *testing.T) {
	store := NewStore()
	path := writeFile(t, t.TempDir(), "f.txt", 0o600)

	assert.False(t, store.IsPubliclyReadable(path))

	require.NoError(t, store.SetPubliclyReadable(path, true))
	assert.True(t, store.IsPubliclyReadable(path))

	// setting again is idempotent
	require.NoError(t, store.SetPubliclyReadable(path, true))
	assert.True(t, store.IsPubliclyReadable(path))

	require.NoError(t, store.SetPubliclyReadable(path, false))
	assert.False(t, store.IsPubliclyReadable(path))
}

func TestWritableRoundTrip(t *testing.T) {
	store := NewStore()
	path := writeFile(t, t.TempDir(), "f.txt", 0o644)

	assert.False(t, store.IsPubliclyWritable(path))

	require.NoError(t, store.SetPubliclyWritable(path, true))
	assert.True(t, store.IsPubliclyWritable(path))

	require.NoError(t, store.SetPubliclyWritable(path, false))
	assert.False(t, store.IsPubliclyWritable(path))
}

func TestSetPreservesOtherBits(t *testing.T) {
	store := NewStore()
	path := writeFile(t, t.TempDir(), "f.sh", 0o750)

	require.NoError(t, store.SetPubliclyReadable(path, true))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o754), info.Mode().Perm())

	require.NoError(t, store.SetPubliclyReadable(path, false))

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
}

func TestDirectoryFlags(t *testing.T) {
	store := NewStore()
	dir := filepath.Join(t.TempDir(), "sub")
	require.NoError(t, os.Mkdir(dir, 0o700))

	assert.False(t, store.IsPubliclyReadable(dir))
	require.NoError(t, store.SetPubliclyReadable(dir, true))
	assert.True(t, store.IsPubliclyReadable(dir))
}

func TestMissingEntry(t *testing.T) {
	store := NewStore()
	missing := filepath.Join(t.TempDir(), "nope")

	assert.False(t, store.IsPubliclyReadable(missing))
	assert.False(t, store.IsPubliclyWritable(missing))
	assert.Error(t, store.SetPubliclyReadable(missing, true))
	assert.Error(t, store.SetPubliclyWritable(missing, true))
}

func TestConcurrentToggles(t *testing.T) {
	store := NewStore()
	path := writeFile(t, t.TempDir(), "f.txt", 0o640)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.SetPubliclyReadable(path, true)
		}()
		go func() {
			defer wg.Done()
			_ = store.SetPubliclyWritable(path, true)
		}()
	}
	wg.Wait()

	// both bits survive because writes to one path are serialized
	assert.True(t, store.IsPubliclyReadable(path))
	assert.True(t, store.IsPubliclyWritable(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o646), info.Mode().Perm())
}
