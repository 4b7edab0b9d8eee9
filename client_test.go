// Package s3transfer provides tests for client initialization and configuration.
package s3transfer

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objecthaul/s3transfer/errors"
	"github.com/objecthaul/s3transfer/internal/testutil"
	"github.com/objecthaul/s3transfer/transfertypes"
)

// setTestCredentials populates the credential environment variables for the
// duration of a test.
func setTestCredentials(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAccessKeyID, "test-key-id")
	t.Setenv(EnvSecretKey, "test-key-secret")
}

// TestClient_New tests the New() constructor with default configuration.
func TestClient_New(t *testing.T) {
	setTestCredentials(t)

	tests := []struct {
		name    string
		opts    []transfertypes.Option
		wantErr bool
	}{
		{
			name:    "default configuration",
			opts:    nil,
			wantErr: false,
		},
		{
			name:    "with region option",
			opts:    []transfertypes.Option{WithRegion("us-west-2")},
			wantErr: false,
		},
		{
			name: "with multiple options",
			opts: []transfertypes.Option{
				WithRegion("us-east-1"),
				WithMaxRetries(5),
				WithTimeout(30 * time.Second),
			},
			wantErr: false,
		},
		{
			name: "with endpoint and path style",
			opts: []transfertypes.Option{
				WithEndpoint("http://localhost:4566"),
				WithForcePathStyle(true),
			},
			wantErr: false,
		},
		{
			name: "with custom http client",
			opts: []transfertypes.Option{
				WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.s3Client)
			assert.NotNil(t, client.fs)
			assert.NotNil(t, client.keyFunc)
		})
	}
}

// TestClient_New_MissingCredentials tests that construction fails fast with
// an error naming the first missing environment variable.
func TestClient_New_MissingCredentials(t *testing.T) {
	tests := []struct {
		name        string
		keyID       string
		keySecret   string
		wantMissing string
	}{
		{
			name:        "missing key id",
			keyID:       "",
			keySecret:   "some-secret",
			wantMissing: EnvAccessKeyID,
		},
		{
			name:        "missing key secret",
			keyID:       "some-key-id",
			keySecret:   "",
			wantMissing: EnvSecretKey,
		},
		{
			name:        "both missing reports key id first",
			keyID:       "",
			keySecret:   "",
			wantMissing: EnvAccessKeyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAccessKeyID, tt.keyID)
			t.Setenv(EnvSecretKey, tt.keySecret)

			client, err := New()
			require.Error(t, err)
			assert.Nil(t, client)
			assert.True(t, errors.IsMissingCredential(err))
			assert.Contains(t, err.Error(), tt.wantMissing)
		})
	}
}

// TestClient_New_ExplicitCredentials tests that an explicit provider bypasses
// the environment entirely.
func TestClient_New_ExplicitCredentials(t *testing.T) {
	t.Setenv(EnvAccessKeyID, "")
	t.Setenv(EnvSecretKey, "")

	provider := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     "explicit-id",
			SecretAccessKey: "explicit-secret",
		}, nil
	})

	client, err := New(WithCredentials(provider))
	require.NoError(t, err)
	require.NotNil(t, client)
}

// TestClient_New_CustomAWSConfig tests that a fully formed config bypasses
// the credential lookup.
func TestClient_New_CustomAWSConfig(t *testing.T) {
	t.Setenv(EnvAccessKeyID, "")
	t.Setenv(EnvSecretKey, "")

	cfg := aws.Config{Region: "eu-west-1"}

	client, err := New(WithAWSConfig(&cfg))
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "eu-west-1", client.config.Region)
}

// TestClient_New_DefaultRegion tests that us-east-1 is applied when no
// region is configured anywhere.
func TestClient_New_DefaultRegion(t *testing.T) {
	t.Setenv(EnvAccessKeyID, "")
	t.Setenv(EnvSecretKey, "")

	client, err := New(WithAWSConfig(&aws.Config{}))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", client.config.Region)
}

// TestClient_New_CredentialProvenance tests that env-loaded credentials carry
// the custom source label.
func TestClient_New_CredentialProvenance(t *testing.T) {
	setTestCredentials(t)

	provider, err := credentialsFromEnv()
	require.NoError(t, err)

	creds, err := provider.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-key-id", creds.AccessKeyID)
	assert.Equal(t, "test-key-secret", creds.SecretAccessKey)
	assert.Equal(t, credentialSource, creds.Source)
}

// TestClient_New_ConcurrentSafety tests that client creation is safe for concurrent use.
func TestClient_New_ConcurrentSafety(t *testing.T) {
	setTestCredentials(t)

	const numGoroutines = 10
	const numCreations = 20

	var wg sync.WaitGroup
	clients := make([]*Client, 0, numGoroutines*numCreations)
	var clientsMu sync.Mutex

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numCreations; j++ {
				client, err := New(WithRegion("us-east-1"))
				require.NoError(t, err)
				require.NotNil(t, client)

				clientsMu.Lock()
				clients = append(clients, client)
				clientsMu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Len(t, clients, numGoroutines*numCreations)
}

// TestClient_NewWithClient tests construction around an injected S3 API.
func TestClient_NewWithClient(t *testing.T) {
	mock := &testutil.MockS3Client{}

	client := NewWithClient(mock)
	require.NotNil(t, client)
	assert.NotNil(t, client.fs)
	assert.NotNil(t, client.keyFunc)
	assert.NoError(t, client.Close())
}

// TestDefaultKeyFunc tests the verbatim path-to-key mapping.
func TestDefaultKeyFunc(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "bare filename",
			path: "file.txt",
			want: "file.txt",
		},
		{
			name: "nested path",
			path: "videos/ski-02.mp4",
			want: "videos/ski-02.mp4",
		},
		{
			name: "deeply nested path",
			path: "a/b/c/d.bin",
			want: "a/b/c/d.bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultKeyFunc(tt.path))
		})
	}
}

// TestClient_WithKeyFunc tests that a custom key function replaces the default.
func TestClient_WithKeyFunc(t *testing.T) {
	setTestCredentials(t)

	client, err := New(WithKeyFunc(func(localPath string) string {
		return "uploads/" + localPath
	}))
	require.NoError(t, err)
	assert.Equal(t, "uploads/file.txt", client.keyFunc("file.txt"))

	// nil key funcs are ignored, keeping the default
	client, err = New(WithKeyFunc(nil))
	require.NoError(t, err)
	assert.Equal(t, "file.txt", client.keyFunc("file.txt"))
}
