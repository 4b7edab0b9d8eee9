// Package s3transfer provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package s3transfer

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/objecthaul/s3transfer/transfertypes"
)

// WithRegion sets the region for storage operations.
// If not specified, us-east-1 is used.
func WithRegion(region string) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// Required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithTimeout sets a deadline applied to each individual request.
// Default is no timeout (0). Success-path behavior is unchanged when no
// deadline fires.
func WithTimeout(timeout time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of SDK retry attempts for failed
// requests. Default is 3. Set to 0 to keep the SDK default.
func WithMaxRetries(maxRetries int) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithAWSConfig allows providing a fully formed AWS configuration.
// This bypasses the environment-variable credential lookup entirely.
func WithAWSConfig(config *aws.Config) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCredentials sets an explicit credentials provider, bypassing the
// environment-variable lookup.
func WithCredentials(provider aws.CredentialsProvider) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Credentials = provider
	}
}

// WithHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including timeouts and proxies.
func WithHTTPClient(client *http.Client) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets a custom filesystem implementation for upload-side file
// access. This allows using in-memory filesystems for testing.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithKeyFunc sets the key-derivation function used by UploadFile to map a
// local path to its remote key. Defaults to DefaultKeyFunc, which uses the
// path verbatim.
func WithKeyFunc(keyFunc transfertypes.KeyFunc) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if keyFunc != nil {
			c.KeyFunc = keyFunc
		}
	}
}

// WithContentType sets the content type for an upload, overriding inference.
func WithContentType(contentType string) transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata sets user-defined metadata for an upload.
func WithMetadata(metadata map[string]string) transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
}

// WithContentTypeSniffing enables content detection from the file's leading
// bytes when the extension is unrecognized. Without it, unknown extensions
// map to application/octet-stream.
func WithContentTypeSniffing() transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		c.SniffContentType = true
	}
}

// WithProgress sets a progress tracker for an upload.
func WithProgress(tracker transfertypes.ProgressTracker) transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithDownloadProgress sets a progress tracker for a download.
func WithDownloadProgress(tracker transfertypes.ProgressTracker) transfertypes.DownloadOption {
	return func(c *transfertypes.DownloadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithAtomicWrite makes DownloadFile write to a temporary file and rename it
// into place on success, instead of truncating the destination up front.
// A failed transfer then leaves no partial file at the final path.
func WithAtomicWrite() transfertypes.DownloadOption {
	return func(c *transfertypes.DownloadOptionConfig) {
		c.AtomicWrite = true
	}
}

// WithDelimiter groups list results by a common prefix delimiter
// (e.g. "/" for directory-style listings).
func WithDelimiter(delimiter string) transfertypes.ListOption {
	return func(c *transfertypes.ListOptionConfig) {
		c.Delimiter = delimiter
	}
}

// WithMaxKeys controls the list page size (1-1000, default 1000).
func WithMaxKeys(maxKeys int32) transfertypes.ListOption {
	return func(c *transfertypes.ListOptionConfig) {
		if maxKeys > 0 {
			c.MaxKeys = maxKeys
		}
	}
}

// WithContinuationToken resumes a truncated listing at the next page.
func WithContinuationToken(token string) transfertypes.ListOption {
	return func(c *transfertypes.ListOptionConfig) {
		c.ContinuationToken = token
	}
}

// WithStartAfter starts listing after the given key.
func WithStartAfter(key string) transfertypes.ListOption {
	return func(c *transfertypes.ListOptionConfig) {
		c.StartAfter = key
	}
}
