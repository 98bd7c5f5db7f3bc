// Package storage constructs object storage bucket clients from provider
// configuration.
package storage

import (
	"context"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/thanos-io/objstore"
	"github.com/thanos-io/objstore/providers/filesystem"
	"github.com/thanos-io/objstore/providers/gcs"
	"github.com/thanos-io/objstore/providers/s3"
	"gopkg.in/yaml.v3"
)

// Provider identifies an object storage backend.
type Provider string

const (
	S3         Provider = "s3"
	GCS        Provider = "gcs"
	Filesystem Provider = "filesystem"
)

const defaultS3Endpoint = "s3.amazonaws.com"

// Config selects an object storage provider and carries its settings.
// Credentials are resolved once when the bucket is constructed: explicit
// keys when set, the provider's ambient resolution otherwise.
type Config struct {
	Provider Provider `yaml:"provider"`
	Bucket   string   `yaml:"bucket"`

	S3         S3Config         `yaml:"s3"`
	GCS        GCSConfig        `yaml:"gcs"`
	Filesystem FilesystemConfig `yaml:"filesystem"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Insecure  bool   `yaml:"insecure"`
}

type GCSConfig struct {
	ServiceAccount string `yaml:"service_account"`
}

type FilesystemConfig struct {
	Directory string `yaml:"directory"`
}

// ParseConfigFile reads a yaml bucket configuration from disk.
func ParseConfigFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading bucket config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing bucket config")
	}
	return cfg, nil
}

// NewBucket constructs a bucket client for the configured provider.
func NewBucket(ctx context.Context, logger log.Logger, cfg Config, component string) (objstore.Bucket, error) {
	switch cfg.Provider {
	case S3:
		endpoint := cfg.S3.Endpoint
		if endpoint == "" {
			endpoint = defaultS3Endpoint
		}
		return s3.NewBucketWithConfig(logger, s3.Config{
			Bucket:    cfg.Bucket,
			Endpoint:  endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Insecure:  cfg.S3.Insecure,
		}, component)
	case GCS:
		conf, err := yaml.Marshal(gcs.Config{
			Bucket:         cfg.Bucket,
			ServiceAccount: cfg.GCS.ServiceAccount,
		})
		if err != nil {
			return nil, errors.Wrap(err, "marshaling gcs config")
		}
		return gcs.NewBucket(ctx, logger, conf, component)
	case Filesystem:
		return filesystem.NewBucket(cfg.Filesystem.Directory)
	default:
		return nil, errors.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
