package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "files"))
	require.NoError(t, err)
	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "db", "messenger.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		BackendFile:   fileStore,
		BackendSQLite: sqliteStore,
		BackendMemory: NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStores_GetMissingKey(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			value, found, err := store.Get(context.Background(), "chats")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, value)
		})
	}
}

func TestStores_SetThenGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "chats", []byte(`[{"id":"1"}]`)))

			value, found, err := store.Get(ctx, "chats")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, `[{"id":"1"}]`, string(value))
		})
	}
}

func TestStores_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "chats", []byte("first")))
			require.NoError(t, store.Set(ctx, "chats", []byte("second")))

			value, found, err := store.Get(ctx, "chats")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "second", string(value))
		})
	}
}

func TestStores_EmptyKeyRejected(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Set(ctx, " ", []byte("x")))
			_, _, err := store.Get(ctx, "")
			assert.Error(t, err)
		})
	}
}

func TestStores_ClosedStoreFails(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fileStore, err := NewFileStore(dir)
	require.NoError(t, err)
	memStore := NewMemoryStore()

	for name, store := range map[string]Store{BackendFile: fileStore, BackendMemory: memStore} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Close())
			assert.ErrorIs(t, store.Set(ctx, "chats", []byte("x")), ErrClosed)
			_, _, err := store.Get(ctx, "chats")
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	input := []byte("hello")
	require.NoError(t, store.Set(ctx, "k", input))
	input[0] = 'j'

	value, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(value))

	value[0] = 'y'
	again, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again))
}

func TestFileStore_WritesKeyFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "chats", []byte("[]")))

	data, err := os.ReadFile(filepath.Join(dir, "chats.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set(context.Background(), "../escape", []byte("x")))
	assert.Error(t, store.Set(context.Background(), "a/b", []byte("x")))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "messenger.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "chats", []byte("persisted")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.Get(ctx, "chats")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "persisted", string(value))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open("file", filepath.Join(dir, "files"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = Open("SQLite", filepath.Join(dir, "kv.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	store, err = Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = Open("redis", "")
	assert.Error(t, err)
}
