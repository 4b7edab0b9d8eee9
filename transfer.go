// Package s3transfer provides the transfer client's core operations.
package s3transfer

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"

	xfererrors "github.com/objecthaul/s3transfer/errors"
	"github.com/objecthaul/s3transfer/internal/operations/download"
	"github.com/objecthaul/s3transfer/internal/operations/upload"
	"github.com/objecthaul/s3transfer/internal/validation"
	"github.com/objecthaul/s3transfer/transfertypes"
)

const (
	// DefaultContentType is used when content type inference finds no match
	DefaultContentType = "application/octet-stream"

	// defaultListPageSize is the service maximum for one list page
	defaultListPageSize = 1000
)

// ListKeys returns the keys of one page of objects under prefix.
// An empty prefix matches every object in the bucket. Entries without a key
// are skipped; an empty bucket yields an empty slice, not an error.
//
// Only the first page is returned: when the bucket holds more matching
// objects than one page carries, the rest are silently absent. Callers
// needing completeness use ListAllKeys.
func (c *Client) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	result, err := c.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(result.Objects))
	for _, obj := range result.Objects {
		if obj.Key == "" {
			continue
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}

// ListAllKeys returns the keys of every object under prefix, looping on the
// continuation token until the listing is exhausted.
func (c *Client) ListAllKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	token := ""

	for {
		opts := []transfertypes.ListOption{}
		if token != "" {
			opts = append(opts, WithContinuationToken(token))
		}

		result, err := c.List(ctx, bucket, prefix, opts...)
		if err != nil {
			return nil, err
		}

		for _, obj := range result.Objects {
			if obj.Key == "" {
				continue
			}
			keys = append(keys, obj.Key)
		}

		if !result.IsTruncated {
			return keys, nil
		}
		token = result.NextContinuationToken
	}
}

// List returns one page of objects under prefix together with pagination
// state. Use WithMaxKeys, WithDelimiter, WithContinuationToken, and
// WithStartAfter to shape the request.
func (c *Client) List(
	ctx context.Context,
	bucket, prefix string,
	opts ...transfertypes.ListOption,
) (*transfertypes.ListResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, xfererrors.NewError("list", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	config := &transfertypes.ListOptionConfig{
		Prefix:  prefix,
		MaxKeys: defaultListPageSize,
	}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(config.Prefix),
		MaxKeys: aws.Int32(config.MaxKeys),
	}

	if config.Delimiter != "" {
		input.Delimiter = aws.String(config.Delimiter)
	}
	if config.ContinuationToken != "" {
		input.ContinuationToken = aws.String(config.ContinuationToken)
	}
	if config.StartAfter != "" {
		input.StartAfter = aws.String(config.StartAfter)
	}

	result, err := c.s3Client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, xfererrors.NewError("list", classifyServiceError(err)).WithBucket(bucket)
	}

	listResult := &transfertypes.ListResult{
		Objects:     make([]transfertypes.Object, 0, len(result.Contents)),
		IsTruncated: aws.ToBool(result.IsTruncated),
		Duration:    time.Since(startTime),
	}

	if result.NextContinuationToken != nil {
		listResult.NextContinuationToken = aws.ToString(result.NextContinuationToken)
	}

	for _, obj := range result.Contents {
		listResult.Objects = append(listResult.Objects, transfertypes.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}

	return listResult, nil
}

// UploadFile uploads a local file, deriving the remote key from the path via
// the client's key function (the path verbatim by default, so "src/main.go"
// lands at key "src/main.go").
//
// The source must exist and be a regular file - checked before any network
// call, failing with ErrSourceNotFound or ErrInvalidInput. Content type is
// inferred from the extension, with content sniffing as fallback and
// application/octet-stream when nothing matches. The file is streamed, never
// buffered whole. The object at the derived key is created or overwritten;
// last writer wins.
func (c *Client) UploadFile(
	ctx context.Context,
	bucket, localPath string,
	opts ...transfertypes.UploadOption,
) (*transfertypes.UploadResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, xfererrors.NewError("uploadFile", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}
	if localPath == "" {
		return nil, xfererrors.NewError("uploadFile", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("local path cannot be empty")
	}

	exists, err := c.fs.Exists(localPath)
	if err != nil {
		return nil, xfererrors.NewError("uploadFile", err).WithBucket(bucket)
	}
	if !exists {
		return nil, xfererrors.NewError("uploadFile", xfererrors.ErrSourceNotFound).
			WithBucket(bucket).
			WithMessage("path " + localPath + " does not exist")
	}

	info, err := c.fs.Stat(localPath)
	if err != nil {
		return nil, xfererrors.NewError("uploadFile", err).WithBucket(bucket)
	}
	if info.IsDir() {
		return nil, xfererrors.NewError("uploadFile", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("path " + localPath + " is a directory, not a file")
	}

	key := c.keyFunc(localPath)
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, xfererrors.NewError("uploadFile", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	config := &transfertypes.UploadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.ContentType == "" {
		config.ContentType = c.detectContentType(localPath, config.SniffContentType)
	}

	file, err := c.fs.Open(localPath)
	if err != nil {
		return nil, xfererrors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	startTime := time.Now()

	uploader := upload.New(c.s3Client)
	result, err := uploader.UploadStream(ctx, bucket, key, file, info.Size(), &upload.Config{
		ContentType:     config.ContentType,
		Metadata:        config.Metadata,
		ProgressTracker: config.ProgressTracker,
	}, startTime)
	if err != nil {
		return nil, xfererrors.NewError("uploadFile", classifyServiceError(err)).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// Upload uploads data from a reader to the given key. Seekable readers are
// streamed; other readers are buffered to learn their length. Content type is
// inferred from the key when not set explicitly.
func (c *Client) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	opts ...transfertypes.UploadOption,
) (*transfertypes.UploadResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, xfererrors.NewError("upload", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, xfererrors.NewError("upload", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if reader == nil {
		return nil, xfererrors.NewError("upload", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("reader cannot be nil")
	}

	config := &transfertypes.UploadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.ContentType == "" {
		config.ContentType = detectContentTypeFromExtension(key)
	}

	startTime := time.Now()

	uploader := upload.New(c.s3Client)
	result, err := uploader.Upload(ctx, bucket, key, reader, &upload.Config{
		ContentType:     config.ContentType,
		Metadata:        config.Metadata,
		ProgressTracker: config.ProgressTracker,
	}, startTime)
	if err != nil {
		return nil, xfererrors.NewError("upload", classifyServiceError(err)).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// DownloadFile downloads an object into destDir, mapping the key's slash
// segments onto nested subdirectories (key "videos/ski-02.mp4" under "data"
// lands at "data/videos/ski-02.mp4").
//
// destDir must already exist and be a directory - checked before any network
// call, failing with ErrInvalidDestination. It is never created
// automatically; only intermediate subdirectories derived from the key are.
// The body is streamed to disk and flushed before success is reported. By
// default a mid-stream failure leaves a partial file; WithAtomicWrite opts
// into temp-file-plus-rename instead.
func (c *Client) DownloadFile(
	ctx context.Context,
	bucket, key, destDir string,
	opts ...transfertypes.DownloadOption,
) (*transfertypes.DownloadResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, xfererrors.NewError("downloadFile", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, xfererrors.NewError("downloadFile", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	info, err := os.Stat(destDir)
	if err != nil || !info.IsDir() {
		return nil, xfererrors.NewError("downloadFile", xfererrors.ErrInvalidDestination).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("path " + destDir + " is not a directory")
	}

	config := &transfertypes.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	downloader := download.New(c.s3Client)
	result, err := downloader.DownloadFile(ctx, bucket, key, destDir, &download.Config{
		ProgressTracker: config.ProgressTracker,
		AtomicWrite:     config.AtomicWrite,
	}, startTime)
	if err != nil {
		return nil, xfererrors.NewError("downloadFile", classifyServiceError(err)).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// Download downloads an object and streams it into the given writer.
func (c *Client) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	opts ...transfertypes.DownloadOption,
) (*transfertypes.DownloadResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, xfererrors.NewError("download", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, xfererrors.NewError("download", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if writer == nil {
		return nil, xfererrors.NewError("download", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("writer cannot be nil")
	}

	config := &transfertypes.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	downloader := download.New(c.s3Client)
	result, err := downloader.Download(ctx, bucket, key, writer, &download.Config{
		ProgressTracker: config.ProgressTracker,
	}, startTime)
	if err != nil {
		return nil, xfererrors.NewError("download", classifyServiceError(err)).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// Get downloads an entire object and returns it as a byte slice.
// Only use for small objects; large objects belong with Download or
// DownloadFile, which stream.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, xfererrors.NewError("get", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, xfererrors.NewError("get", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	startTime := time.Now()

	downloader := download.New(c.s3Client)
	data, err := downloader.Get(ctx, bucket, key, &download.Config{}, startTime)
	if err != nil {
		return nil, xfererrors.NewError("get", classifyServiceError(err)).WithBucket(bucket).WithKey(key)
	}

	return data, nil
}

// Exists checks if an object exists using a HEAD request.
// Returns false with a nil error when the object is absent; errors are
// reserved for other failures (network, permissions).
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return false, xfererrors.NewError("exists", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, xfererrors.NewError("exists", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		if errors.Is(classifyServiceError(err), xfererrors.ErrObjectNotFound) {
			return false, nil
		}
		return false, xfererrors.NewError("exists", err).WithBucket(bucket).WithKey(key)
	}

	return true, nil
}

// GetMetadata retrieves object metadata without downloading the body.
func (c *Client) GetMetadata(ctx context.Context, bucket, key string) (*transfertypes.ObjectMetadata, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, xfererrors.NewError("getMetadata", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, xfererrors.NewError("getMetadata", xfererrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	result, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		return nil, xfererrors.NewError("getMetadata", classifyServiceError(err)).WithBucket(bucket).WithKey(key)
	}

	metadata := &transfertypes.ObjectMetadata{
		ContentType:   aws.ToString(result.ContentType),
		ContentLength: aws.ToInt64(result.ContentLength),
		LastModified:  aws.ToTime(result.LastModified),
		ETag:          aws.ToString(result.ETag),
	}

	if result.Metadata != nil {
		metadata.Metadata = make(map[string]string, len(result.Metadata))
		for k, v := range result.Metadata {
			metadata.Metadata[k] = v
		}
	}

	return metadata, nil
}

// detectContentType infers the content type for a local file from its
// extension, falling back to the generic binary type. When sniff is set,
// unknown extensions additionally try detection from the leading bytes.
// Inference never fails.
func (c *Client) detectContentType(path string, sniff bool) string {
	if byExt := contentTypeByExtension(path); byExt != "" {
		return byExt
	}

	if sniff {
		if file, err := c.fs.Open(path); err == nil {
			defer file.Close()

			buf := make([]byte, 512)
			if n, _ := file.Read(buf); n > 0 {
				if mt := mimetype.Detect(buf[:n]); mt != nil {
					return mt.String()
				}
			}
		}
	}

	return DefaultContentType
}

// detectContentTypeFromExtension infers a content type from the key or path
// extension alone, falling back to the generic binary type.
func detectContentTypeFromExtension(path string) string {
	if byExt := contentTypeByExtension(path); byExt != "" {
		return byExt
	}
	return DefaultContentType
}

// extraContentTypes covers common extensions missing from the stdlib table
// on systems without a mime.types database.
var extraContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".mp3":  "audio/mpeg",
	".txt":  "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".gz":   "application/gzip",
	".zip":  "application/zip",
}

func contentTypeByExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return extraContentTypes[ext]
}

// classifyServiceError maps AWS service errors to this module's sentinels.
// Unrecognized errors pass through untouched.
func classifyServiceError(err error) error {
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return xfererrors.ErrObjectNotFound
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return xfererrors.ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return xfererrors.ErrObjectNotFound
		case "NoSuchBucket":
			return xfererrors.ErrBucketNotFound
		case "AccessDenied":
			return xfererrors.ErrAccessDenied
		}
	}

	return err
}
