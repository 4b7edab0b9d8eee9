// Package upload handles object upload operations.
//
// Bodies of known size are streamed to the service as-is; the package never
// buffers a whole file in memory, which matters for sources larger than RAM.
package upload

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/objecthaul/s3transfer/errors"
	"github.com/objecthaul/s3transfer/internal/s3api"
	"github.com/objecthaul/s3transfer/transfertypes"
)

// Config carries the resolved per-upload settings.
type Config struct {
	ContentType     string
	Metadata        map[string]string
	ProgressTracker transfertypes.ProgressTracker
}

// Uploader handles object upload operations.
type Uploader struct {
	s3Client s3api.S3API
}

// New creates a new Uploader instance.
func New(s3Client s3api.S3API) *Uploader {
	return &Uploader{
		s3Client: s3Client,
	}
}

// UploadStream uploads a body of known size, streaming it to the service.
// The reader is handed to the SDK directly; no intermediate buffering.
func (u *Uploader) UploadStream(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	size int64,
	config *Config,
	startTime time.Time,
) (*transfertypes.UploadResult, error) {
	body := reader
	if config.ProgressTracker != nil {
		body = &progressReader{
			reader:          reader,
			progressTracker: config.ProgressTracker,
			total:           size,
		}
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(config.ContentType),
		ContentLength: aws.Int64(size),
	}

	if len(config.Metadata) > 0 {
		input.Metadata = config.Metadata
	}

	output, err := u.s3Client.PutObject(ctx, input)
	if err != nil {
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		return nil, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(size, size)
		config.ProgressTracker.Complete()
	}

	return &transfertypes.UploadResult{
		Key:         key,
		Size:        size,
		ETag:        aws.ToString(output.ETag),
		ContentType: config.ContentType,
		Duration:    time.Since(startTime),
	}, nil
}

// Upload uploads from a reader of unknown length. Seekable readers are
// streamed; anything else is drained into memory first to learn its size.
func (u *Uploader) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	config *Config,
	startTime time.Time,
) (*transfertypes.UploadResult, error) {
	if seeker, ok := reader.(io.ReadSeeker); ok {
		size, err := seeker.Seek(0, io.SeekEnd)
		if err == nil {
			if _, err = seeker.Seek(0, io.SeekStart); err != nil {
				return nil, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
			}
			return u.UploadStream(ctx, bucket, key, seeker, size, config, startTime)
		}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}

	return u.UploadStream(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), config, startTime)
}

// progressReader wraps an io.Reader to report upload progress.
type progressReader struct {
	reader          io.Reader
	progressTracker transfertypes.ProgressTracker
	total           int64
	bytesRead       int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.bytesRead += int64(n)
		pr.progressTracker.Update(pr.bytesRead, pr.total)
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}
