package catalogmedia_test

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

// fakeBlobStore is a scripted in-memory BlobStore. Error fields, when
// set, take precedence over the stored objects.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	existsErr   error
	existsCalls int
	uploadErr   error
	downloadErr error
	deleteErr   error

	// existsScript, when non-empty, overrides one Exists call per entry
	// in order; after the script runs out the store answers normally.
	existsScript []existsResult
}

type existsResult struct {
	exists bool
	err    error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (s *fakeBlobStore) put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

func (s *fakeBlobStore) Exists(ctx context.Context, objectKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls++
	if len(s.existsScript) > 0 {
		next := s.existsScript[0]
		s.existsScript = s.existsScript[1:]
		return next.exists, next.err
	}
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.objects[objectKey]
	return ok, nil
}

func (s *fakeBlobStore) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.put(objectKey, data)
	return nil
}

func (s *fakeBlobStore) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.objects[objectKey]
	if !ok {
		return nil, catalogmedia.ErrAssetNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, objectKey)
	return nil
}

func (s *fakeBlobStore) GetObjectMeta(ctx context.Context, objectKey string) (*catalogmedia.ObjectMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objectKey]
	if !ok {
		return nil, catalogmedia.ErrAssetNotFound
	}
	return &catalogmedia.ObjectMeta{Key: objectKey, Size: int64(len(data))}, nil
}

// fastProbe keeps retry delays out of test runtime.
func fastProbe() catalogmedia.ProbePolicy {
	return catalogmedia.ProbePolicy{Retries: 2, Delay: 1}
}

func standardIdentity() catalogmedia.Identity {
	return catalogmedia.Identity{
		UserID:   "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     catalogmedia.RoleStandard,
	}
}

func adminIdentity() catalogmedia.Identity {
	return catalogmedia.Identity{
		UserID:   "admin-1",
		Username: "root",
		Email:    "root@example.com",
		Role:     catalogmedia.RoleAdmin,
	}
}
