package upload

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objecthaul/s3transfer/internal/testutil"
)

// unseekableReader hides the Seek method of the wrapped reader.
type unseekableReader struct {
	r io.Reader
}

func (u *unseekableReader) Read(p []byte) (int, error) {
	return u.r.Read(p)
}

func TestUploader_UploadStream(t *testing.T) {
	content := testutil.GenerateRandomData(4096)

	var gotBody []byte
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "test-bucket", aws.ToString(params.Bucket))
			assert.Equal(t, "data.bin", aws.ToString(params.Key))
			assert.Equal(t, "application/octet-stream", aws.ToString(params.ContentType))
			assert.Equal(t, int64(len(content)), aws.ToInt64(params.ContentLength))

			var err error
			gotBody, err = io.ReadAll(params.Body)
			require.NoError(t, err)

			return &s3.PutObjectOutput{ETag: aws.String(`"etag"`)}, nil
		},
	}

	uploader := New(mock)
	result, err := uploader.UploadStream(context.Background(), "test-bucket", "data.bin",
		bytes.NewReader(content), int64(len(content)),
		&Config{ContentType: "application/octet-stream"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "data.bin", result.Key)
	assert.Equal(t, int64(len(content)), result.Size)
	assert.Equal(t, `"etag"`, result.ETag)
	assert.Equal(t, content, gotBody)
}

func TestUploader_Upload_SeekableReaderStreams(t *testing.T) {
	content := testutil.GenerateRandomData(1024)

	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			// Size learned by seeking, not by draining into memory.
			assert.Equal(t, int64(len(content)), aws.ToInt64(params.ContentLength))
			body, err := io.ReadAll(params.Body)
			require.NoError(t, err)
			assert.Equal(t, content, body)
			return &s3.PutObjectOutput{}, nil
		},
	}

	uploader := New(mock)
	result, err := uploader.Upload(context.Background(), "test-bucket", "data.bin",
		bytes.NewReader(content), &Config{ContentType: "application/octet-stream"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), result.Size)
}

func TestUploader_Upload_UnseekableReaderBuffers(t *testing.T) {
	content := testutil.GenerateRandomData(512)

	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, int64(len(content)), aws.ToInt64(params.ContentLength))
			body, err := io.ReadAll(params.Body)
			require.NoError(t, err)
			assert.Equal(t, content, body)
			return &s3.PutObjectOutput{}, nil
		},
	}

	uploader := New(mock)
	_, err := uploader.Upload(context.Background(), "test-bucket", "data.bin",
		&unseekableReader{r: bytes.NewReader(content)},
		&Config{ContentType: "application/octet-stream"}, time.Now())
	require.NoError(t, err)
}

func TestUploader_UploadStream_ProgressOnFailure(t *testing.T) {
	mock := testutil.NewMockBuilder().
		WithFailedUpload(assert.AnError).
		Build()

	tracker := &testutil.MockProgressTracker{}
	uploader := New(mock)

	_, err := uploader.UploadStream(context.Background(), "test-bucket", "data.bin",
		bytes.NewReader([]byte("x")), 1,
		&Config{ContentType: "text/plain", ProgressTracker: tracker}, time.Now())
	require.Error(t, err)
	assert.True(t, tracker.ErrorCalled)
	assert.False(t, tracker.CompleteCalled)
}
