package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "operation only",
			err:  NewError("list", base),
			want: "s3transfer.list: boom",
		},
		{
			name: "with bucket",
			err:  NewError("list", base).WithBucket("my-bucket"),
			want: "s3transfer.list bucket my-bucket: boom",
		},
		{
			name: "with key",
			err:  NewError("download", base).WithKey("a/b.txt"),
			want: "s3transfer.download object a/b.txt: boom",
		},
		{
			name: "with bucket and key",
			err:  NewObjectError("upload", "my-bucket", "a/b.txt", base),
			want: "s3transfer.upload my-bucket/a/b.txt: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewError("uploadFile", ErrSourceNotFound).WithBucket("b").WithKey("k")

	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.True(t, IsSourceNotFound(err))
}

func TestError_WithMessage(t *testing.T) {
	err := NewError("newClient", ErrMissingCredential).WithMessage("S3_KEY_ID is not set")

	assert.Contains(t, err.Error(), "S3_KEY_ID is not set")
	assert.True(t, IsMissingCredential(err))
}

func TestError_NestedWrapping(t *testing.T) {
	inner := NewError("download", ErrObjectNotFound).WithBucket("b").WithKey("k")
	outer := NewError("downloadFile", inner).WithBucket("b").WithKey("k")

	assert.True(t, IsObjectNotFound(outer))
	assert.True(t, IsObjectNotFound(fmt.Errorf("wrapped: %w", outer)))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		sentinel  error
		predicate func(error) bool
	}{
		{"missing credential", ErrMissingCredential, IsMissingCredential},
		{"source not found", ErrSourceNotFound, IsSourceNotFound},
		{"invalid destination", ErrInvalidDestination, IsInvalidDestination},
		{"invalid key", ErrInvalidKey, IsInvalidKey},
		{"object not found", ErrObjectNotFound, IsObjectNotFound},
		{"invalid input", ErrInvalidInput, IsInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.predicate(NewError("op", tt.sentinel)))
			assert.False(t, tt.predicate(errors.New("unrelated")))
			assert.False(t, tt.predicate(nil))
		})
	}
}
