// Package download handles object download operations.
//
// Response bodies are consumed as a stream of chunks and written through a
// buffered writer, so objects larger than available memory download fine.
// By default the destination file is truncated before the first chunk and a
// mid-stream failure leaves a partial file behind; atomic mode writes to a
// temporary file and renames on success.
package download

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/objecthaul/s3transfer/errors"
	"github.com/objecthaul/s3transfer/internal/s3api"
	"github.com/objecthaul/s3transfer/transfertypes"
)

// Config carries the resolved per-download settings.
type Config struct {
	ProgressTracker transfertypes.ProgressTracker
	AtomicWrite     bool
}

// Downloader handles object download operations.
type Downloader struct {
	s3Client s3api.S3API
}

// New creates a new Downloader instance.
func New(s3Client s3api.S3API) *Downloader {
	return &Downloader{
		s3Client: s3Client,
	}
}

// Download streams an object into the given writer.
func (d *Downloader) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	config *Config,
	startTime time.Time,
) (*transfertypes.DownloadResult, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		if isObjectNotFound(err) {
			return nil, errors.NewError("download", errors.ErrObjectNotFound).WithBucket(bucket).WithKey(key)
		}
		return nil, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}
	defer output.Body.Close()

	size := int64(0)
	if output.ContentLength != nil {
		size = *output.ContentLength
	}

	var reader io.Reader = output.Body
	if config.ProgressTracker != nil {
		reader = &progressReader{
			reader:          output.Body,
			progressTracker: config.ProgressTracker,
			total:           size,
		}
	}

	// The consumer pulls chunks at its own pace; nothing is held in memory
	// beyond the copy buffer.
	bytesWritten, err := io.Copy(writer, reader)
	if err != nil {
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		return nil, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}

	if size == 0 {
		size = bytesWritten
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(bytesWritten, size)
		config.ProgressTracker.Complete()
	}

	return &transfertypes.DownloadResult{
		Key:      key,
		Size:     size,
		ETag:     aws.ToString(output.ETag),
		Duration: time.Since(startTime),
	}, nil
}

// ResolveDestPath joins the destination directory with the object key and
// returns the target file path and its parent directory. Keys whose join
// degenerates to the destination itself (empty or dot keys) are rejected.
func ResolveDestPath(destDir, key string) (filePath, parentDir string, err error) {
	filePath = filepath.Join(destDir, filepath.FromSlash(key))

	cleanDest := filepath.Clean(destDir)
	if filePath == cleanDest || filepath.Dir(filePath) == filePath {
		return "", "", errors.NewError("downloadFile", errors.ErrInvalidKey).
			WithKey(key).
			WithMessage("no usable parent directory under " + destDir)
	}

	return filePath, filepath.Dir(filePath), nil
}

// DownloadFile downloads an object into destDir, creating any missing
// intermediate directories implied by the key. The destination directory
// itself must already exist; the caller validates that before a network call
// is ever issued.
func (d *Downloader) DownloadFile(
	ctx context.Context,
	bucket, key, destDir string,
	config *Config,
	startTime time.Time,
) (*transfertypes.DownloadResult, error) {
	filePath, parentDir, err := ResolveDestPath(destDir, key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(parentDir, 0o755); err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}

	if config.AtomicWrite {
		return d.downloadFileAtomic(ctx, bucket, key, filePath, parentDir, config, startTime)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	result, err := d.downloadTo(ctx, bucket, key, file, config, startTime)
	if err != nil {
		// Partial output stays on disk; documented behavior.
		return nil, err
	}

	result.Path = filePath
	return result, nil
}

// downloadFileAtomic writes to a temporary file next to the target and
// renames it into place once the body is fully flushed.
func (d *Downloader) downloadFileAtomic(
	ctx context.Context,
	bucket, key, filePath, parentDir string,
	config *Config,
	startTime time.Time,
) (*transfertypes.DownloadResult, error) {
	tmp, err := os.CreateTemp(parentDir, ".s3transfer-*")
	if err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}
	tmpPath := tmp.Name()

	result, err := d.downloadTo(ctx, bucket, key, tmp, config, startTime)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}

	result.Path = filePath
	return result, nil
}

// downloadTo streams the body through a buffered writer and flushes before
// reporting success, so callers observe durable data.
func (d *Downloader) downloadTo(
	ctx context.Context,
	bucket, key string,
	file *os.File,
	config *Config,
	startTime time.Time,
) (*transfertypes.DownloadResult, error) {
	bufWriter := bufio.NewWriter(file)

	result, err := d.Download(ctx, bucket, key, bufWriter, config, startTime)
	if err != nil {
		bufWriter.Flush()
		return nil, err
	}

	if err := bufWriter.Flush(); err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// Get downloads an entire object and returns it as a byte slice.
// Convenience for small objects that fit in memory.
func (d *Downloader) Get(
	ctx context.Context,
	bucket, key string,
	config *Config,
	startTime time.Time,
) ([]byte, error) {
	var buf bytes.Buffer
	_, err := d.Download(ctx, bucket, key, &buf, config, startTime)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// progressReader wraps an io.Reader to report download progress.
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

// isObjectNotFound checks if an error indicates that an object was not found.
func isObjectNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") || strings.Contains(errStr, "NotFound")
}
