package local

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/store-admin/internal/photostore"
)

func TestStore_SaveAndGet(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("fake jpeg data")

	require.NoError(t, store.Save(ctx, "abc.jpeg", "image/jpeg", bytes.NewReader(data)))

	r, mime, err := store.Get(ctx, "abc.jpeg")
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "image/jpeg", mime)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStore_SaveRefusesOverwrite(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "dup.jpeg", "image/jpeg", bytes.NewReader([]byte("one"))))

	err = store.Save(ctx, "dup.jpeg", "image/jpeg", bytes.NewReader([]byte("two")))
	assert.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "gone.jpeg", "image/jpeg", bytes.NewReader([]byte("x"))))
	require.NoError(t, store.Delete(ctx, "gone.jpeg"))

	_, _, err = store.Get(ctx, "gone.jpeg")
	assert.ErrorIs(t, err, photostore.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "gone.jpeg"), photostore.ErrNotFound)
}

func TestStore_PathTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	_, _, err = store.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)

	err = store.Save(ctx, "../escape.jpeg", "image/jpeg", bytes.NewReader([]byte("x")))
	assert.Error(t, err)
}

func TestStore_Check(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Check(context.Background()))
}
