package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	_ "net/http/pprof"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/primevalsoup/parquet-chunker/chunker"
	"github.com/primevalsoup/parquet-chunker/storage"
)

type Options struct {
	// Path to the input parquet file.
	InputFile string
	// Name of the target bucket.
	Bucket string
	// Chunk size budget in megabytes.
	ChunkSizeMB int
	// Prefix prepended verbatim to every object key.
	Prefix string
	// Explicit credentials; ambient resolution applies when unset.
	AccessKeyID string
	SecretKey   string

	Provider    string
	S3Endpoint  string
	S3Region    string
	FSDirectory string
	ConfigFile  string
	Concurrency int
	NoProgress  bool
	Debug       bool
}

func main() {
	app := kingpin.New("chunk-and-upload", "Split a parquet file into chunks and upload them to an object storage bucket.")
	opts := Options{}
	if err := (&opts).BindFlags(app); err != nil {
		log.Fatal(err)
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	if opts.Debug {
		logger = level.NewFilter(logger, level.AllowDebug())
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Println(http.ListenAndServe("localhost:8080", nil))
		}()
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	cfg, err := opts.bucketConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	bucket, err := storage.NewBucket(ctx, logger, cfg, app.Name)
	if err != nil {
		log.Fatal(err)
	}
	defer bucket.Close()

	uploaderOpts := []chunker.UploaderOption{
		chunker.WithChunkSize(opts.ChunkSizeMB),
		chunker.WithConcurrency(opts.Concurrency),
		chunker.WithRegistry(prometheus.DefaultRegisterer),
	}
	if !opts.NoProgress {
		var bar *progressbar.ProgressBar
		uploaderOpts = append(uploaderOpts, chunker.WithProgress(func(ordinal, numChunks int, bucketName, key string) {
			if bar == nil {
				bar = progressbar.Default(int64(numChunks))
			}
			if err := bar.Add(1); err != nil {
				log.Println(err)
			}
		}))
	}

	uploader := chunker.NewUploader(logger, bucket, uploaderOpts...)
	if err := uploader.Run(ctx, opts.InputFile, opts.Prefix); err != nil {
		log.Fatal(err)
	}
}

func (o *Options) BindFlags(app *kingpin.Application) error {
	app.Arg("input-file", "Path to the input parquet file.").
		Required().StringVar(&o.InputFile)
	app.Arg("bucket", "Name of the target bucket.").
		Required().StringVar(&o.Bucket)
	app.Flag("chunk-size", "Size of each chunk in megabytes.").
		Default("250").IntVar(&o.ChunkSizeMB)
	app.Flag("aws-access-key-id", "Explicit access key. Ambient credentials are used when unset.").
		Default("").StringVar(&o.AccessKeyID)
	app.Flag("aws-secret-access-key", "Explicit secret key. Ambient credentials are used when unset.").
		Default("").StringVar(&o.SecretKey)
	app.Flag("prefix", "Prefix prepended verbatim to every object key.").
		Default("").StringVar(&o.Prefix)
	app.Flag("provider", "Object storage provider: s3, gcs or filesystem.").
		Default("s3").StringVar(&o.Provider)
	app.Flag("s3.endpoint", "S3 endpoint.").
		Default("").StringVar(&o.S3Endpoint)
	app.Flag("s3.region", "S3 region.").
		Default("").StringVar(&o.S3Region)
	app.Flag("filesystem.directory", "Root directory for the filesystem provider.").
		Default("").StringVar(&o.FSDirectory)
	app.Flag("objstore.config-file", "YAML file with bucket provider configuration. Overrides provider flags.").
		Default("").StringVar(&o.ConfigFile)
	app.Flag("concurrency", "Number of chunks to process at the same time.").
		Default("1").IntVar(&o.Concurrency)
	app.Flag("no-progress", "Disable the progress bar.").BoolVar(&o.NoProgress)
	app.Flag("debug", "Enable debug logging and a localhost metrics listener.").BoolVar(&o.Debug)

	if _, err := app.Parse(os.Args[1:]); err != nil {
		return err
	}
	if o.ChunkSizeMB < 1 {
		return fmt.Errorf("--chunk-size must be at least 1 MB, got %d", o.ChunkSizeMB)
	}
	return nil
}

func (o *Options) bucketConfig() (storage.Config, error) {
	if o.ConfigFile != "" {
		cfg, err := storage.ParseConfigFile(o.ConfigFile)
		if err != nil {
			return storage.Config{}, err
		}
		if cfg.Bucket == "" {
			cfg.Bucket = o.Bucket
		}
		return cfg, nil
	}
	return storage.Config{
		Provider: storage.Provider(o.Provider),
		Bucket:   o.Bucket,
		S3: storage.S3Config{
			Endpoint:  o.S3Endpoint,
			Region:    o.S3Region,
			AccessKey: o.AccessKeyID,
			SecretKey: o.SecretKey,
		},
		Filesystem: storage.FilesystemConfig{
			Directory: o.FSDirectory,
		},
	}, nil
}
