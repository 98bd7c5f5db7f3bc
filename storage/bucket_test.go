package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

func TestParseConfigFile(t *testing.T) {
	raw := `
provider: s3
bucket: exports
s3:
  endpoint: minio.internal:9000
  region: us-east-1
  access_key: key
  secret_key: secret
  insecure: true
`
	path := filepath.Join(t.TempDir(), "bucket.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(raw)), 0o644))

	cfg, err := ParseConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, S3, cfg.Provider)
	require.Equal(t, "exports", cfg.Bucket)
	require.Equal(t, "minio.internal:9000", cfg.S3.Endpoint)
	require.Equal(t, "us-east-1", cfg.S3.Region)
	require.Equal(t, "key", cfg.S3.AccessKey)
	require.Equal(t, "secret", cfg.S3.SecretKey)
	require.True(t, cfg.S3.Insecure)
}

func TestParseConfigFileMissing(t *testing.T) {
	_, err := ParseConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewBucketFilesystem(t *testing.T) {
	dir := t.TempDir()
	bucket, err := NewBucket(context.Background(), log.NewNopLogger(), Config{
		Provider:   Filesystem,
		Bucket:     "local",
		Filesystem: FilesystemConfig{Directory: dir},
	}, "test")
	require.NoError(t, err)
	defer bucket.Close()

	require.NoError(t, bucket.Upload(context.Background(), "obj", bytes.NewReader([]byte("payload"))))

	reader, err := bucket.Get(context.Background(), "obj")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

func TestNewBucketS3ExplicitCredentials(t *testing.T) {
	bucket, err := NewBucket(context.Background(), log.NewNopLogger(), Config{
		Provider: S3,
		Bucket:   "exports",
		S3: S3Config{
			Region:    "us-east-1",
			AccessKey: "key",
			SecretKey: "secret",
		},
	}, "test")
	require.NoError(t, err)
	defer bucket.Close()
	require.Equal(t, "exports", bucket.Name())
}

func TestNewBucketUnsupportedProvider(t *testing.T) {
	_, err := NewBucket(context.Background(), log.NewNopLogger(), Config{Provider: "ftp"}, "test")
	require.Error(t, err)
	require.Contains(t, err.Error(), `unsupported storage provider "ftp"`)
}
