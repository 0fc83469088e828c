package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReadRemove(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, n, err := store.Save("session-1", "mat-1", "Lecture Notes.TXT", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(store.Root(), "session-1", "mat-1-lecture notes.txt"), path)

	b, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveSessionDir(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Save("session-2", "m", "a.txt", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.RemoveSessionDir("session-2"))
	_, err = os.Stat(filepath.Join(store.Root(), "session-2"))
	assert.True(t, os.IsNotExist(err))

	// Missing directories are not an error.
	assert.NoError(t, store.RemoveSessionDir("session-2"))
}

func TestRejectsPathsOutsideRoot(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	assert.ErrorIs(t, store.Remove(filepath.Join(store.Root(), "..", "x")), ErrOutsideRoot)

	_, _, err = store.Save("../escape", "m", "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"Résumé (final).pdf": "r_sum_ _final_.pdf",
		"../../etc/passwd":   "passwd",
		"C:\\docs\\Notes.txt": "notes.txt",
		"":                   "file",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFileName(in), in)
	}
}
