package kv

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns every store that can run without external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		BackendMemory: NewMemoryStore(),
		BackendFile:   fileStore,
		BackendSQLite: sqliteStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "s2w:pagesSheet", `{"v":"v1"}`))
			require.NoError(t, store.Set(ctx, "other/key with spaces", "x"))

			got, err := store.Get(ctx, "s2w:pagesSheet")
			require.NoError(t, err)
			assert.Equal(t, `{"v":"v1"}`, got)

			require.NoError(t, store.Set(ctx, "s2w:pagesSheet", `{"v":"v2"}`))
			got, err = store.Get(ctx, "s2w:pagesSheet")
			require.NoError(t, err)
			assert.Equal(t, `{"v":"v2"}`, got)

			keys, err := store.Keys(ctx)
			require.NoError(t, err)
			sort.Strings(keys)
			assert.Equal(t, []string{"other/key with spaces", "s2w:pagesSheet"}, keys)

			require.NoError(t, store.Remove(ctx, "s2w:pagesSheet"))
			require.NoError(t, store.Remove(ctx, "s2w:pagesSheet"), "remove must be idempotent")

			_, err = store.Get(ctx, "s2w:pagesSheet")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, store.Set(ctx, "", "x"), ErrEmptyKey)
		})
	}
}

func TestFileStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))
	require.NoError(t, store.Set(context.Background(), "k", "v"))

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "s2w:pagesSheet", "payload"))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "s2w:pagesSheet")
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Backend: "FILE", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Options{Backend: "redis"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(ctx, Options{Backend: BackendFile})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendPostgres})
	assert.Error(t, err)
}
