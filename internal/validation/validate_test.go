package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/objecthaul/s3transfer/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{
			name:    "valid simple name",
			bucket:  "my-bucket",
			wantErr: false,
		},
		{
			name:    "valid with dots",
			bucket:  "my.bucket.name",
			wantErr: false,
		},
		{
			name:    "valid with numbers",
			bucket:  "bucket123",
			wantErr: false,
		},
		{
			name:    "empty name",
			bucket:  "",
			wantErr: true,
		},
		{
			name:    "too short",
			bucket:  "ab",
			wantErr: true,
		},
		{
			name:    "too long",
			bucket:  strings.Repeat("a", 64),
			wantErr: true,
		},
		{
			name:    "uppercase letters",
			bucket:  "MyBucket",
			wantErr: true,
		},
		{
			name:    "underscore",
			bucket:  "my_bucket",
			wantErr: true,
		},
		{
			name:    "leading hyphen",
			bucket:  "-bucket",
			wantErr: true,
		},
		{
			name:    "trailing dot",
			bucket:  "bucket.",
			wantErr: true,
		},
		{
			name:    "adjacent dots",
			bucket:  "my..bucket",
			wantErr: true,
		},
		{
			name:    "formatted as IP address",
			bucket:  "192.168.1.1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{
			name:    "simple key",
			key:     "file.txt",
			wantErr: false,
		},
		{
			name:    "nested key",
			key:     "videos/2024/ski-02.mp4",
			wantErr: false,
		},
		{
			name:    "key with spaces",
			key:     "my documents/report final.pdf",
			wantErr: false,
		},
		{
			name:    "unicode key",
			key:     "データ/ファイル.txt",
			wantErr: false,
		},
		{
			name:    "empty key",
			key:     "",
			wantErr: true,
		},
		{
			name:    "path traversal",
			key:     "../etc/passwd",
			wantErr: true,
		},
		{
			name:    "embedded traversal",
			key:     "a/../../b",
			wantErr: true,
		},
		{
			name:    "absolute path",
			key:     "/etc/passwd",
			wantErr: true,
		},
		{
			name:    "too long",
			key:     strings.Repeat("k", 1025),
			wantErr: true,
		},
		{
			name:    "control characters",
			key:     "file\x00name",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
