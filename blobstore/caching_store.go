package blobstore

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/lexigo/internal/cache"
)

// DefaultCacheBytes is the CachingStore capacity used when none is given.
const DefaultCacheBytes = 64 << 20

// CachingStore wraps a BlobStore with an LRU cache of whole blobs.
//
// Stored documents are small and read whole, so the cache holds complete blob
// contents weighted by their size. Concurrent misses for the same blob share
// one backend request.
type CachingStore struct {
	inner BlobStore
	cache *cache.LRU[string, []byte]
	group singleflight.Group
}

// NewCachingStore creates a new CachingStore holding up to capacity bytes.
// capacity defaults to DefaultCacheBytes if <= 0.
func NewCachingStore(inner BlobStore, capacity int64) *CachingStore {
	if capacity <= 0 {
		capacity = DefaultCacheBytes
	}
	return &CachingStore{
		inner: inner,
		cache: cache.New[string, []byte](capacity, cache.WithCost[string](func(b []byte) int64 {
			return int64(len(b))
		})),
	}
}

// Get returns the blob content from the cache, loading it on a miss.
// The returned slice is shared and must be treated as read-only.
func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		return data, nil
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		data, err := ReadAll(ctx, s.inner, name)
		if err != nil {
			return nil, err
		}
		s.cache.Set(name, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Open returns a blob served from the cached content.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	data, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return &memoryBlob{data: data}, nil
}

// Put invalidates the cached content and writes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Remove(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates the cached content and deletes through.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Remove(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the wrapped store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hit and miss counters.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
