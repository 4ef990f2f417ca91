// Package blobstore provides the storage abstraction lexigo loads documents from.
//
// A BlobStore holds one serialized document per blob. The loader package maps
// every hit to a blob name and decodes the blob into the caller's domain type.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and embedded use
//   - LocalStore: one file per blob under a root directory
//   - CachingStore: LRU cache of whole blobs in front of any store
//   - s3.Store: Amazon S3 with ranged reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible stores
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Stores that can fetch a whole blob in one request should also implement Getter,
// which ReadAll prefers over Open.
package blobstore
