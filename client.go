// Package s3transfer provides client initialization and configuration.
//
// The Client holds region and credential configuration and acts as the
// factory for list, upload, and download requests against an S3-compatible
// object store.
package s3transfer

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/objecthaul/s3transfer/errors"
	"github.com/objecthaul/s3transfer/internal/s3api"
	"github.com/objecthaul/s3transfer/transfertypes"
)

// Environment variables consulted for credentials when no explicit provider
// or custom AWS config is supplied.
const (
	// EnvAccessKeyID names the environment variable holding the access key id.
	EnvAccessKeyID = "S3_KEY_ID"

	// EnvSecretKey names the environment variable holding the secret key.
	EnvSecretKey = "S3_KEY_SECRET"
)

// credentialSource tags env-loaded credentials for diagnostics. It has no
// functional effect.
const credentialSource = "loaded-from-custom-env"

// Client represents a transfer client with configurable options.
// It is safe for concurrent use; the underlying configuration is read-only
// after construction. No network call is made until the first operation.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// rawClient holds the actual AWS S3 client for operations that need it
	rawClient *s3.Client

	// config holds the AWS configuration
	config aws.Config

	// mu protects concurrent access to client configuration
	mu sync.RWMutex

	// fs is the filesystem abstraction for upload-side file access
	fs fs.Filesystem

	// keyFunc derives remote keys from local paths during file uploads
	keyFunc transfertypes.KeyFunc
}

// DefaultKeyFunc maps a local path to its remote key verbatim, converting OS
// separators to slashes. Uploading "src/main.go" stores the object at key
// "src/main.go", preserving the path as a pseudo-directory hierarchy.
func DefaultKeyFunc(localPath string) string {
	return filepath.ToSlash(localPath)
}

// New creates a new transfer client with the provided options.
//
// Unless WithAWSConfig or WithCredentials are supplied, credentials are read
// from the S3_KEY_ID and S3_KEY_SECRET environment variables at construction
// time; a missing variable fails with ErrMissingCredential naming that
// variable. Construction performs no network I/O.
//
// Example:
//
//	client, err := s3transfer.New(
//	    s3transfer.WithRegion("us-west-2"),
//	)
func New(opts ...transfertypes.Option) (*Client, error) {
	clientCfg := &transfertypes.ClientConfig{
		MaxRetries: 3, // Default retry count
		Timeout:    0, // No timeout by default
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		creds := clientCfg.Credentials
		if creds == nil {
			creds, err = credentialsFromEnv()
			if err != nil {
				return nil, err
			}
		}
		cfg, err = config.LoadDefaultConfig(context.Background(),
			config.WithCredentialsProvider(creds),
		)
		if err != nil {
			return nil, errors.NewError("newClient", err)
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	// Handle custom HTTP client and per-request timeout
	httpClient := clientCfg.CustomHTTPClient
	if httpClient == nil && clientCfg.Timeout > 0 {
		httpClient = &http.Client{Timeout: clientCfg.Timeout}
	}
	if httpClient != nil {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	// Initialize filesystem - use provided one or default to OS filesystem
	var filesystem fs.Filesystem
	if clientCfg.Filesystem != nil {
		filesystem = clientCfg.Filesystem
	} else {
		// Native path resolution, so relative upload paths work verbatim.
		filesystem = billy.NewBaseOSFS()
	}

	keyFunc := clientCfg.KeyFunc
	if keyFunc == nil {
		keyFunc = DefaultKeyFunc
	}

	client := &Client{
		s3Client:  s3Client,
		rawClient: s3Client,
		config:    cfg,
		fs:        filesystem,
		keyFunc:   keyFunc,
	}

	return client, nil
}

// NewWithClient creates a new transfer client with a custom S3API
// implementation. This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API) *Client {
	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		fs:       billy.NewBaseOSFS(),
		keyFunc:  DefaultKeyFunc,
	}
}

// SetFilesystem sets the filesystem implementation for the client.
// Useful for testing or when the filesystem needs to change after creation.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

// Close releases any resources held by the client.
// Currently a no-op but included for future extensibility.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return nil
}

// credentialsFromEnv builds a static credentials provider from the two
// required environment variables, failing fast when either is absent.
func credentialsFromEnv() (aws.CredentialsProvider, error) {
	keyID := os.Getenv(EnvAccessKeyID)
	if keyID == "" {
		return nil, errors.NewError("newClient", errors.ErrMissingCredential).
			WithMessage(EnvAccessKeyID + " is not set")
	}

	keySecret := os.Getenv(EnvSecretKey)
	if keySecret == "" {
		return nil, errors.NewError("newClient", errors.ErrMissingCredential).
			WithMessage(EnvSecretKey + " is not set")
	}

	return credentials.StaticCredentialsProvider{
		Value: aws.Credentials{
			AccessKeyID:     keyID,
			SecretAccessKey: keySecret,
			Source:          credentialSource,
		},
	}, nil
}
