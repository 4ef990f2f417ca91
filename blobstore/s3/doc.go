// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("catalog/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	loader := loader.New(store)
//
// # Features
//
//   - Whole-object Get for document loads, range reads for partial fetches
//   - CRC32C-checked single-part puts and multipart uploads for large payloads
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
