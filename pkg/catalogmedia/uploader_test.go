package catalogmedia_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
	"github.com/mercaba/catalog-media/pkg/catalogmedia/assetkey"
)

func fixedKeys(key string) assetkey.Generator {
	return assetkey.NewCustomFuncGenerator(func(string) string { return key })
}

func TestUploaderPrimarySuccess(t *testing.T) {
	primary := newFakeBlobStore()
	fallback := newFakeBlobStore()
	cache := catalogmedia.NewExistenceCache()
	uploader := catalogmedia.NewUploader("s3", primary, "fs", fallback, fixedKeys("k1"), cache)

	key, err := uploader.Store(context.Background(), strings.NewReader("payload"), "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "k1", key)

	rc, err := primary.Download(context.Background(), "k1")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "payload", string(data))

	// The fallback never saw the bytes.
	_, err = fallback.Download(context.Background(), "k1")
	assert.Error(t, err)

	// The cache learned the key is remotely present.
	exists, known := cache.Get("k1")
	assert.True(t, known)
	assert.True(t, exists)
}

func TestUploaderDegradesToFallback(t *testing.T) {
	primary := newFakeBlobStore()
	primary.uploadErr = errors.New("access denied")
	fallback := newFakeBlobStore()
	cache := catalogmedia.NewExistenceCache()
	uploader := catalogmedia.NewUploader("s3", primary, "fs", fallback, fixedKeys("k2"), cache)

	key, err := uploader.Store(context.Background(), strings.NewReader("payload"), "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "k2", key)

	rc, err := fallback.Download(context.Background(), "k2")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "payload", string(data))

	// Fallback-held keys must read as remotely absent so resolution
	// picks the local path.
	exists, known := cache.Get("k2")
	assert.True(t, known)
	assert.False(t, exists)
}

func TestUploaderBothBackendsFail(t *testing.T) {
	primary := newFakeBlobStore()
	primary.uploadErr = errors.New("primary down")
	fallback := newFakeBlobStore()
	fallback.uploadErr = errors.New("disk full")
	cache := catalogmedia.NewExistenceCache()
	uploader := catalogmedia.NewUploader("s3", primary, "fs", fallback, fixedKeys("k3"), cache)

	_, err := uploader.Store(context.Background(), strings.NewReader("payload"), "photo.jpg")
	assert.ErrorIs(t, err, catalogmedia.ErrUploadFailed)

	var storageErr *catalogmedia.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "fs", storageErr.Backend)

	assert.Equal(t, 0, cache.Len())
}

func TestUploaderNoFallbackConfigured(t *testing.T) {
	primary := newFakeBlobStore()
	primary.uploadErr = errors.New("primary down")
	uploader := catalogmedia.NewUploader("s3", primary, "", nil, fixedKeys("k4"), nil)

	_, err := uploader.Store(context.Background(), strings.NewReader("payload"), "photo.jpg")
	assert.ErrorIs(t, err, catalogmedia.ErrUploadFailed)
}

func TestUploaderReturnsOpaqueKey(t *testing.T) {
	primary := newFakeBlobStore()
	uploader := catalogmedia.NewUploader("s3", primary, "", nil, nil, nil)

	key, err := uploader.Store(context.Background(), strings.NewReader("x"), "María ñoño.jpg")
	require.NoError(t, err)

	// Keys are flat, URL-free identifiers.
	assert.NotContains(t, key, "/")
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, "://")
	assert.Contains(t, key, "Maria")
}
