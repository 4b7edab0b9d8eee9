package download

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objecthaul/s3transfer/errors"
	"github.com/objecthaul/s3transfer/internal/testutil"
)

func TestResolveDestPath(t *testing.T) {
	tests := []struct {
		name       string
		destDir    string
		key        string
		wantPath   string
		wantParent string
		wantErr    bool
	}{
		{
			name:       "bare key",
			destDir:    "data",
			key:        "file.txt",
			wantPath:   filepath.Join("data", "file.txt"),
			wantParent: "data",
		},
		{
			name:       "nested key",
			destDir:    "data",
			key:        "videos/2024/clip.mp4",
			wantPath:   filepath.Join("data", "videos", "2024", "clip.mp4"),
			wantParent: filepath.Join("data", "videos", "2024"),
		},
		{
			name:    "dot key degenerates to destination",
			destDir: "data",
			key:     ".",
			wantErr: true,
		},
		{
			name:    "empty key degenerates to destination",
			destDir: "data",
			key:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, parent, err := ResolveDestPath(tt.destDir, tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidKey(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantParent, parent)
		})
	}
}

// failingBody yields its data, then fails with a transport error.
type failingBody struct {
	data []byte
	pos  int
}

func (b *failingBody) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, stderrors.New("unexpected EOF: connection reset")
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

func (b *failingBody) Close() error { return nil }

func TestDownloader_DownloadFile_PartialFileOnFailure(t *testing.T) {
	partial := []byte("partial content before the stream died")
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{
				Body:          &failingBody{data: partial},
				ContentLength: testutil.Int64Ptr(int64(len(partial)) * 2),
			}, nil
		},
	}

	destDir := t.TempDir()
	downloader := New(mock)

	_, err := downloader.DownloadFile(context.Background(), "test-bucket", "big.bin", destDir,
		&Config{}, time.Now())
	require.Error(t, err)

	// Default mode keeps whatever made it to disk before the failure.
	got, readErr := os.ReadFile(filepath.Join(destDir, "big.bin"))
	require.NoError(t, readErr)
	assert.Equal(t, partial, got)
}

func TestDownloader_DownloadFile_CreatesIntermediateDirs(t *testing.T) {
	content := []byte("nested body")
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return testutil.CreateGetObjectOutput(content, "application/octet-stream"), nil
		},
	}

	destDir := t.TempDir()
	downloader := New(mock)

	result, err := downloader.DownloadFile(context.Background(), "test-bucket", "a/b/c.bin", destDir,
		&Config{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "a", "b", "c.bin"), result.Path)

	got, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDownloader_DownloadFile_Atomic_NoPartialOnFailure(t *testing.T) {
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{
				Body:          &failingBody{data: []byte("doomed")},
				ContentLength: testutil.Int64Ptr(100),
			}, nil
		},
	}

	destDir := t.TempDir()
	downloader := New(mock)

	_, err := downloader.DownloadFile(context.Background(), "test-bucket", "big.bin", destDir,
		&Config{AtomicWrite: true}, time.Now())
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(destDir, "big.bin"))
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or temp files may remain")
}
