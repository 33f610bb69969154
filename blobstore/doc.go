// Package blobstore provides storage abstraction for compressed volume bricks.
//
// BlobStore is the interface for reading and writing data blobs (bricks,
// annotation shards). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: In-memory store for tests and small datasets
//   - LocalStore: Local filesystem with atomic writes
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)       // Open for reading
//	    Put(ctx, name, data) error          // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
