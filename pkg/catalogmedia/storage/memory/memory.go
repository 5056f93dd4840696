package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

// Backend is an in-memory implementation of the catalogmedia.BlobStore
// interface, used in tests and development.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend
func New() catalogmedia.BlobStore {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

// Exists reports whether an object key is present
func (b *Backend) Exists(ctx context.Context, objectKey string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.objects[objectKey]
	return exists, nil
}

// Upload uploads content directly
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, catalogmedia.ErrAssetNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete deletes content. Deleting a missing key is a no-op.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, objectKey)
	return nil
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*catalogmedia.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, catalogmedia.ErrAssetNotFound
	}

	return &catalogmedia.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(data)),
		ContentType: "application/octet-stream",
		UpdatedAt:   time.Now(),
	}, nil
}
