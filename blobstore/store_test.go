package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest runs the shared BlobStore contract against an
// implementation.
func storeUnderTest(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := store.Open(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PutOpenRead", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "raw/0_0", []byte("hello world")))

		blob, err := store.Open(ctx, "raw/0_0")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(11), blob.Size())

		buf := make([]byte, 5)
		n, err := blob.ReadAt(ctx, buf, 6)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "world", string(buf))
	})

	t.Run("ReadAtPastEnd", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "short", []byte("abc")))

		blob, err := store.Open(ctx, "short")
		require.NoError(t, err)
		defer blob.Close()

		buf := make([]byte, 8)
		n, err := blob.ReadAt(ctx, buf, 1)
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, "bc", string(buf[:n]))
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "over", []byte("first")))
		require.NoError(t, store.Put(ctx, "over", []byte("second!")))

		blob, err := store.Open(ctx, "over")
		require.NoError(t, err)
		defer blob.Close()

		data, err := ReadAll(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "second!", string(data))
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "labels/0_0", []byte("a")))
		require.NoError(t, store.Put(ctx, "labels/0_1", []byte("b")))

		names, err := store.List(ctx, "labels/")
		require.NoError(t, err)
		assert.Equal(t, []string{"labels/0_0", "labels/0_1"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "gone", []byte("x")))
		require.NoError(t, store.Delete(ctx, "gone"))

		_, err := store.Open(ctx, "gone")
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting again is not an error.
		assert.NoError(t, store.Delete(ctx, "gone"))
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	storeUnderTest(t, NewLocalStore(t.TempDir()))
}

func TestLocalStoreListEmptyRoot(t *testing.T) {
	store := NewLocalStore(t.TempDir() + "/does-not-exist-yet")
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
