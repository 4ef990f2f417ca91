// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object store. This package uses the official MinIO
// Go client library and works with other S3-compatible systems like Ceph,
// SeaweedFS, and Garage.
//
// # Basic Usage
//
//	store, err := minio.Dial(ctx, "localhost:9000", "minioadmin", "minioadmin", "catalog", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mapper := loader.New(store, loader.WithPrefix("docs/"))
//
// An existing client can be wrapped with NewStore, which also accepts a key prefix:
//
//	store := minio.NewStore(client, "my-bucket", "tenant-a/")
package minio
