package data

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFile_DetectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.mmdb")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	var calls atomic.Int32
	w, err := WatchFile(path, func() { calls.Add(1) })
	require.NoError(t, err)
	defer w.Close()

	assert.NoError(t, w.Ready())
	assert.False(t, w.Changed())

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))

	require.Eventually(t, w.Changed, 5*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, w.Ready(), ErrDatabaseChanged)

	// A second change does not call back again.
	require.NoError(t, os.WriteFile(path, []byte("v3"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestWatchFile_DetectsReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.mmdb")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	w, err := WatchFile(path, nil)
	require.NoError(t, err)
	defer w.Close()

	tmp := filepath.Join(dir, "db.mmdb.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("v2"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, w.Changed, 5*time.Second, 10*time.Millisecond)
}

func TestWatchFile_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.mmdb")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	w, err := WatchFile(path, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)

	assert.False(t, w.Changed())
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	_, err := WatchFile("/nonexistent/dir/db.mmdb", nil)
	assert.Error(t, err)
}
