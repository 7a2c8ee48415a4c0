package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	meta := domain.BlobMetadata{Filename: "rows.csv", Size: 4, IndexingStatus: domain.IndexingPending}

	require.NoError(t, store.Put(context.Background(), "doc-1", []byte("data"), meta))

	data, got, err := store.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
	assert.Equal(t, meta, got)
}

func TestPut_ReplacesExisting(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(context.Background(), "doc-1", []byte("old"),
		domain.BlobMetadata{Filename: "a.csv", Size: 3, IndexingStatus: domain.IndexingPending}))
	require.NoError(t, store.Put(context.Background(), "doc-1", []byte("new"),
		domain.BlobMetadata{Filename: "b.csv", Size: 3, IndexingStatus: domain.IndexingPending}))

	data, meta, err := store.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
	assert.Equal(t, "b.csv", meta.Filename)
}

func TestGet_Missing(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
}

func TestHeadAndUpdateMetadata(t *testing.T) {
	store := newTestStore(t)
	meta := domain.BlobMetadata{Filename: "rows.csv", Size: 4, IndexingStatus: domain.IndexingPending}
	require.NoError(t, store.Put(context.Background(), "doc-1", []byte("data"), meta))

	meta.IndexingStatus = domain.IndexingComplete
	require.NoError(t, store.UpdateMetadata(context.Background(), "doc-1", meta))

	got, err := store.HeadMetadata(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IndexingComplete, got.IndexingStatus)

	// Bytes untouched by the metadata update.
	data, _, err := store.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
}

func TestUpdateMetadata_Missing(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateMetadata(context.Background(), "missing", domain.BlobMetadata{})
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
}

func TestDeleteAndList(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(context.Background(), "a", []byte("1"), domain.BlobMetadata{}))
	require.NoError(t, store.Put(context.Background(), "b", []byte("2"), domain.BlobMetadata{}))

	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete(context.Background(), "a"))

	keys, err = store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)

	assert.ErrorIs(t, store.Delete(context.Background(), "a"), domain.ErrBlobNotFound)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "doc-1", []byte("data"), domain.BlobMetadata{}))
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations or lose data.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	data, _, err := store.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
}
