package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexigo/blobstore"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	ctx := context.Background()

	base, err := Dial(ctx,
		envOr("MINIO_ENDPOINT", "localhost:9000"),
		envOr("MINIO_ACCESS_KEY", "minioadmin"),
		envOr("MINIO_SECRET_KEY", "minioadmin"),
		"test-lexigo", false,
	)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	store := NewStore(base.client, base.bucket, "test-prefix/", WithContentType("application/json"))

	data := []byte(`{"title":"hello minio world"}`)
	require.NoError(t, store.Put(ctx, "docs/1", data))

	got, err := blobstore.ReadAll(ctx, store, "docs/1")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	blob, err := store.Open(ctx, "docs/1")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	rc, err := blob.ReadRange(ctx, 10, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(part))
	require.NoError(t, rc.Close())
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "docs/")
	require.NoError(t, err)
	assert.Contains(t, names, "docs/1")

	require.NoError(t, store.Delete(ctx, "docs/1"))
	_, err = store.Open(ctx, "docs/1")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	_, err = store.Get(ctx, "docs/1")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
