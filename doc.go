// Package s3transfer provides a high-level Go module for moving objects
// between the local filesystem and S3-compatible object stores. It wraps
// AWS SDK v2 to provide a small, predictable interface for listing,
// uploading, and downloading objects.
//
// The module emphasizes fail-fast validation: local preconditions (source
// file exists, destination directory exists, credentials present) are
// checked before a single network call is issued. Bodies are streamed in
// both directions, so objects larger than available memory transfer fine.
//
// Key features:
//   - Credentials read from S3_KEY_ID / S3_KEY_SECRET, with a clear error
//     naming the missing variable
//   - Progressive enhancement through functional options
//   - Content-type inference from file extension with sniffing fallback
//   - Pagination-aware listing alongside a simple one-page variant
//   - Comprehensive error handling with bucket and key context
//
// Example usage:
//
//	client, err := s3transfer.New(
//	    s3transfer.WithRegion("us-east-1"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	// Upload a file; its path becomes the object key.
//	result, err := client.UploadFile(ctx, "my-bucket", "videos/ski-02.mp4")
//	if err != nil {
//	    return err
//	}
package s3transfer
