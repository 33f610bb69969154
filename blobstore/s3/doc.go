// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	client := s3.NewFromConfig(cfg)
//	store := s3.NewStore(client, "my-bucket", "bricks/")
//
//	src, err := source.NewBrickSource(store, extents, source.WithBrickShape(shape))
//
// # Features
//
//   - Range reads for fetching single bricks out of large objects
//   - Multipart uploads with CRC32C checksums for large bricks
//   - Automatic pagination for listing
//   - Configurable prefix for multi-dataset isolation
package s3
