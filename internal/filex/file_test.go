package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNested(t *testing.T) {
	base := t.TempDir()

	got, err := EnsureDir(filepath.Join(base, "attachments", "2024"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	fi, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	again, err := EnsureDir(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureDir(filepath.Join(blocker, "sub"))
	require.Error(t, err)
}

func TestCopyFile_SnapshotIsIndependent(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "report.txt")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0o600))

	snap, err := CopyFile(src, filepath.Join(base, "attachments", "doc-1.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Size)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", snap.SHA256)

	require.NoError(t, os.Remove(src))

	b, err := os.ReadFile(snap.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
}

func TestCopyFile_MissingSource(t *testing.T) {
	base := t.TempDir()
	_, err := CopyFile(filepath.Join(base, "nope"), filepath.Join(base, "out"))
	require.ErrorContains(t, err, "open")

	_, statErr := os.Stat(filepath.Join(base, "out"))
	assert.True(t, os.IsNotExist(statErr))
}
