package disk_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vivek-yadav01/CollabRoom/internal/infra/storage/disk"
)

func TestStore_StoreWritesKeyedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := disk.NewStore(dir)
	require.NoError(t, err)

	info, err := store.Store(context.Background(), strings.NewReader("%PDF-1.4"), "Deck.PDF")
	require.NoError(t, err)

	assert.Equal(t, "Deck.PDF", info.OriginalName)
	assert.Equal(t, ".pdf", info.Type, "extension is lowercased")
	assert.True(t, strings.HasSuffix(info.Filename, ".pdf"))
	assert.NotEqual(t, "Deck.PDF", info.Filename, "stored key must not reuse the client filename")
	assert.Equal(t, "/uploads/"+info.Filename, info.Path)

	data, err := os.ReadFile(filepath.Join(dir, info.Filename))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestStore_KeysAreUnique(t *testing.T) {
	store, err := disk.NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := store.Store(ctx, strings.NewReader("one"), "notes.txt")
	require.NoError(t, err)
	b, err := store.Store(ctx, strings.NewReader("two"), "notes.txt")
	require.NoError(t, err)

	assert.NotEqual(t, a.Filename, b.Filename)
}

func TestStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := disk.NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	info, err := store.Store(ctx, strings.NewReader("x"), "a.txt")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, info.Filename))
	_, err = os.Stat(filepath.Join(dir, info.Filename))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, store.Delete(ctx, info.Filename), "deleting a missing key reports an error")
}

func TestStore_DeleteStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := disk.NewStore(dir)
	require.NoError(t, err)

	outside := filepath.Join(dir, "..", "escape.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))
	t.Cleanup(func() { os.Remove(outside) })

	err = store.Delete(context.Background(), "../escape.txt")
	assert.Error(t, err, "only the base name is looked up inside the store directory")
	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr, "file outside the store directory must survive")
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	store, err := disk.NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	stat, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}
