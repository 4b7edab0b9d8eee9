// Package errors provides error types and handling for object-transfer operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a transfer operation error with context about what failed.
// It wraps the underlying AWS SDK or filesystem error with the operation name
// and, where known, the bucket and object key involved.
type Error struct {
	// Op is the operation that failed (e.g., "uploadFile", "downloadFile", "list")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3transfer.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3transfer.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3transfer.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3transfer.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for transfer operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrMissingCredential indicates a required credential environment
	// variable was absent at client construction time. The wrapping error
	// names the missing variable.
	ErrMissingCredential = errors.New("s3transfer: missing credential")

	// ErrSourceNotFound indicates the local upload source path does not exist
	ErrSourceNotFound = errors.New("s3transfer: upload source not found")

	// ErrInvalidDestination indicates the download destination is missing or
	// not a directory
	ErrInvalidDestination = errors.New("s3transfer: invalid download destination")

	// ErrInvalidKey indicates the key joined with the destination directory
	// yields no usable parent path
	ErrInvalidKey = errors.New("s3transfer: invalid object key for destination")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3transfer: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3transfer: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3transfer: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3transfer: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3transfer: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3transfer: invalid object key")
)

// IsMissingCredential checks if an error indicates a missing credential
// environment variable.
func IsMissingCredential(err error) bool {
	return errors.Is(err, ErrMissingCredential)
}

// IsSourceNotFound checks if an error indicates a missing local upload source.
func IsSourceNotFound(err error) bool {
	return errors.Is(err, ErrSourceNotFound)
}

// IsInvalidDestination checks if an error indicates an unusable download
// destination directory.
func IsInvalidDestination(err error) bool {
	return errors.Is(err, ErrInvalidDestination)
}

// IsInvalidKey checks if an error indicates a key that cannot be mapped onto
// the destination directory.
func IsInvalidKey(err error) bool {
	return errors.Is(err, ErrInvalidKey)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
