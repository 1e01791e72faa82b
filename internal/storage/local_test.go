package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	loc, err := store.Save("data.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(loc))
	assert.True(t, strings.HasSuffix(loc, "-data.csv"))

	got, err := store.Load(loc)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(got))
}

func TestLocalStore_SameNameDoesNotCollide(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save("x.csv", []byte("1"))
	require.NoError(t, err)
	second, err := store.Save("x.csv", []byte("2"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLocalStore_PathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	loc, err := store.Save("../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(loc))

	outside := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(outside, []byte("s"), 0o600))
	_, err = store.Load(outside)
	assert.Error(t, err)
}
