package catalogmedia

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mercaba/catalog-media/pkg/catalogmedia/assetkey"
)

// Uploader is the upload pipeline: it writes asset bytes to the primary
// backend, falls back to the secondary backend when the primary rejects
// them, and hands back an opaque asset key. It never returns a URL; URL
// shape is a resolution-time concern and the Locator re-derives the
// holding backend on every read.
type Uploader struct {
	primary      BlobStore
	primaryName  string
	fallback     BlobStore
	fallbackName string
	keys         assetkey.Generator
	cache        *ExistenceCache
	logger       *slog.Logger
}

// NewUploader creates an upload pipeline. fallback may be nil, in which
// case a primary failure is terminal.
func NewUploader(primaryName string, primary BlobStore, fallbackName string, fallback BlobStore, keys assetkey.Generator, cache *ExistenceCache) *Uploader {
	if keys == nil {
		keys = assetkey.NewRandomGenerator()
	}
	return &Uploader{
		primary:      primary,
		primaryName:  primaryName,
		fallback:     fallback,
		fallbackName: fallbackName,
		keys:         keys,
		cache:        cache,
		logger:       slog.Default(),
	}
}

// Store writes the asset bytes and returns the generated asset key.
// The bytes are buffered so the fallback attempt can replay them.
func (u *Uploader) Store(ctx context.Context, reader io.Reader, suggestedName string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	key := u.keys.GenerateKey(suggestedName)

	primaryErr := u.primary.Upload(ctx, key, bytes.NewReader(data))
	if primaryErr == nil {
		u.recordUploaded(key, true)
		return key, nil
	}

	if u.fallback == nil {
		return "", &StorageError{Backend: u.primaryName, Key: key, Op: "upload", Err: errors.Join(ErrUploadFailed, primaryErr)}
	}

	u.logger.Warn("primary upload failed, degrading to fallback backend",
		"primary", u.primaryName, "fallback", u.fallbackName, "key", key, "error", primaryErr)

	if err := u.fallback.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return "", &StorageError{Backend: u.fallbackName, Key: key, Op: "upload", Err: errors.Join(ErrUploadFailed, primaryErr, err)}
	}

	u.recordUploaded(key, false)
	return key, nil
}

// recordUploaded refreshes the existence cache after an upload: a key
// that landed in the primary store is known-present remotely; one that
// only reached the fallback must read as remotely absent so resolution
// picks the local path.
func (u *Uploader) recordUploaded(key string, remote bool) {
	if u.cache == nil {
		return
	}
	u.cache.Set(key, remote)
}
