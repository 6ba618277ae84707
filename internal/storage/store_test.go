package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestStoreContract(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   newTestFileStore(t),
		"sqlite": newTestGormStore(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, KeyCart)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, KeyCart, []byte(`[{"id":1}]`)))
			got, err := store.Get(ctx, KeyCart)
			require.NoError(t, err)
			require.Equal(t, []byte(`[{"id":1}]`), got)

			require.NoError(t, store.Set(ctx, KeyCart, []byte(`[]`)))
			got, err = store.Get(ctx, KeyCart)
			require.NoError(t, err)
			require.Equal(t, []byte(`[]`), got)

			require.NoError(t, store.Delete(ctx, KeyCart))
			_, err = store.Get(ctx, KeyCart)
			require.ErrorIs(t, err, ErrNotFound)

			// deleting an absent key is not an error
			require.NoError(t, store.Delete(ctx, KeyCart))
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := []byte(`{"a":1}`)
	require.NoError(t, store.Set(ctx, KeySession, original))
	original[0] = 'X'

	got, err := store.Get(ctx, KeySession)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), got)

	got[0] = 'Y'
	again, err := store.Get(ctx, KeySession)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), again)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyOrders, []byte(`[{"id":"1"}]`)))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, KeyOrders)
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"id":"1"}]`), got)
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestNewGormStoreRequiresHandle(t *testing.T) {
	if _, err := NewGormStore(nil); err == nil {
		t.Fatal("expected error for nil gorm handle")
	}
}

func TestGormStoreUpsertsUnderSameKey(t *testing.T) {
	ctx := context.Background()
	store := newTestGormStore(t)

	require.NoError(t, store.Set(ctx, KeySession, []byte(`{"id":1}`)))
	require.NoError(t, store.Set(ctx, KeySession, []byte(`{"id":2}`)))

	got, err := store.Get(ctx, KeySession)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":2}`), got)

	var count int64
	require.NoError(t, store.db.Model(&KVRecord{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := NewGormStore(conn)
	require.NoError(t, err)
	return store
}
