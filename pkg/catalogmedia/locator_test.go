package catalogmedia_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

func newTestLocator(store *fakeBlobStore) (*catalogmedia.Locator, *catalogmedia.ExistenceCache) {
	cache := catalogmedia.NewExistenceCache()
	prober := catalogmedia.NewProber("s3", store, fastProbe())
	return catalogmedia.NewLocator(prober, cache, nil), cache
}

func TestLocatorExternalFieldTakesPrecedence(t *testing.T) {
	locator, _ := newTestLocator(newFakeBlobStore())

	row := catalogmedia.Row{
		"Imagen":   "https://example.com/cover.jpg",
		"imagenes": []string{"uploaded_key.jpg"},
	}

	assert.Equal(t, "https://example.com/cover.jpg", locator.Resolve(context.Background(), row))
}

func TestLocatorRewritesRemoteStoreURLs(t *testing.T) {
	locator, _ := newTestLocator(newFakeBlobStore())

	row := catalogmedia.Row{
		"Imagen": "https://bucket.s3.amazonaws.com/photo.jpg",
	}

	assert.Equal(t, "/proxy/photo.jpg", locator.Resolve(context.Background(), row))
}

func TestLocatorKeyInRemoteStore(t *testing.T) {
	store := newFakeBlobStore()
	store.put("abc_photo.jpg", []byte("bytes"))
	locator, _ := newTestLocator(store)

	row := catalogmedia.Row{"imagenes": []string{"abc_photo.jpg"}}

	assert.Equal(t, "/proxy/abc_photo.jpg", locator.Resolve(context.Background(), row))
}

func TestLocatorKeyAbsentFallsBackToStatic(t *testing.T) {
	locator, _ := newTestLocator(newFakeBlobStore())

	row := catalogmedia.Row{"imagenes": []string{"local_only.jpg"}}

	assert.Equal(t, "/uploads/local_only.jpg", locator.Resolve(context.Background(), row))
}

func TestLocatorEmptyRow(t *testing.T) {
	locator, _ := newTestLocator(newFakeBlobStore())

	assert.Equal(t, "", locator.Resolve(context.Background(), catalogmedia.Row{}))
	assert.Equal(t, "", locator.Resolve(context.Background(), catalogmedia.Row{"name": "no media"}))
}

func TestLocatorSynonymPriority(t *testing.T) {
	store := newFakeBlobStore()
	store.put("primary.jpg", []byte("x"))
	store.put("alias.jpg", []byte("x"))
	locator, _ := newTestLocator(store)

	row := catalogmedia.Row{
		"images":   []string{"alias.jpg"},
		"imagenes": []string{"primary.jpg"},
	}

	assert.Equal(t, "/proxy/primary.jpg", locator.Resolve(context.Background(), row))
}

func TestLocatorPassesThroughResolvedPaths(t *testing.T) {
	store := newFakeBlobStore()
	locator, _ := newTestLocator(store)

	row := catalogmedia.Row{"imagenes": []string{"/proxy/already.jpg"}}

	assert.Equal(t, "/proxy/already.jpg", locator.Resolve(context.Background(), row))
	// Resolved paths never trigger a probe.
	assert.Equal(t, 0, store.existsCalls)
}

func TestLocatorUsesCacheOnRepeatResolves(t *testing.T) {
	store := newFakeBlobStore()
	store.put("cached.jpg", []byte("x"))
	locator, _ := newTestLocator(store)

	row := catalogmedia.Row{"imagenes": []string{"cached.jpg"}}

	locator.Resolve(context.Background(), row)
	locator.Resolve(context.Background(), row)
	locator.Resolve(context.Background(), row)

	assert.Equal(t, 1, store.existsCalls)
}

func TestLocatorProbeErrorFallsBackWithoutCaching(t *testing.T) {
	store := newFakeBlobStore()
	store.existsErr = errors.New("network down")
	locator, cache := newTestLocator(store)

	row := catalogmedia.Row{"imagenes": []string{"unknown.jpg"}}

	assert.Equal(t, "/uploads/unknown.jpg", locator.Resolve(context.Background(), row))

	// The failed probe must not poison the cache; the next render
	// probes again.
	_, known := cache.Get("unknown.jpg")
	assert.False(t, known)
}

func TestLocatorResolveRef(t *testing.T) {
	store := newFakeBlobStore()
	store.put("thumb.jpg", []byte("x"))
	locator, _ := newTestLocator(store)
	ctx := context.Background()

	assert.Equal(t, "", locator.ResolveRef(ctx, ""))
	assert.Equal(t, "https://example.com/t.jpg", locator.ResolveRef(ctx, "https://example.com/t.jpg"))
	assert.Equal(t, "/proxy/t.jpg", locator.ResolveRef(ctx, "https://b.s3.amazonaws.com/t.jpg"))
	assert.Equal(t, "/proxy/thumb.jpg", locator.ResolveRef(ctx, "thumb.jpg"))
	assert.Equal(t, "/uploads/missing.jpg", locator.ResolveRef(ctx, "missing.jpg"))
}

func TestLocatorCustomRemoteDomains(t *testing.T) {
	cache := catalogmedia.NewExistenceCache()
	prober := catalogmedia.NewProber("s3", newFakeBlobStore(), fastProbe())
	locator := catalogmedia.NewLocator(prober, cache, []string{"cdn.internal"})

	ctx := context.Background()
	assert.Equal(t, "/proxy/a.jpg", locator.ResolveRef(ctx, "https://media.cdn.internal/a.jpg"))
	// The defaults no longer apply once domains are overridden.
	assert.Equal(t, "https://b.s3.amazonaws.com/a.jpg", locator.ResolveRef(ctx, "https://b.s3.amazonaws.com/a.jpg"))
}
