// Package chunker splits a parquet file into chunks of roughly equal
// estimated size and uploads each chunk to an object storage bucket.
package chunker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/thanos-io/objstore"
	"golang.org/x/sync/errgroup"

	"github.com/primevalsoup/parquet-chunker/dataset"
)

// DefaultChunkSizeMB is the chunk size budget applied when none is
// configured.
const DefaultChunkSizeMB = 250

// ProgressFunc is called after each successful chunk upload. Ordinal is
// 1-based. Delivery is serialized: even when chunks are processed
// concurrently, the callback is never invoked by more than one goroutine
// at a time.
type ProgressFunc func(ordinal, numChunks int, bucket, key string)

type UploaderOption func(*Uploader)

// WithChunkSize overrides the chunk size budget in megabytes.
func WithChunkSize(mb int) UploaderOption {
	return func(u *Uploader) {
		u.chunkSizeMB = mb
	}
}

// WithConcurrency sets how many chunks may be serialized and uploaded at
// the same time. The default of 1 processes chunks strictly one at a time
// in ascending ordinal order.
func WithConcurrency(n int) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

// WithProgress registers a callback invoked after every successful upload.
func WithProgress(fn ProgressFunc) UploaderOption {
	return func(u *Uploader) {
		u.onProgress = fn
	}
}

// WithRegistry registers upload metrics with the given registerer.
func WithRegistry(reg prometheus.Registerer) UploaderOption {
	return func(u *Uploader) {
		u.metrics = newMetrics(reg)
	}
}

// Uploader splits a parquet file into chunks and uploads every chunk to an
// object storage bucket. Chunks are serialized to a per-run scratch
// directory and removed once their upload attempt completes.
type Uploader struct {
	logger      log.Logger
	bucket      objstore.Bucket
	chunkSizeMB int
	concurrency int
	onProgress  ProgressFunc
	progressMu  sync.Mutex
	metrics     *metrics
}

func NewUploader(logger log.Logger, bucket objstore.Bucket, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		logger:      logger,
		bucket:      bucket,
		chunkSizeMB: DefaultChunkSizeMB,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.metrics == nil {
		u.metrics = newMetrics(nil)
	}
	return u
}

// Run loads the input file, splits it according to the chunk size budget
// and uploads every chunk under the given key prefix. The first failed
// chunk aborts the run; chunks already uploaded are left in the bucket.
func (u *Uploader) Run(ctx context.Context, inputFile, prefix string) error {
	if u.chunkSizeMB < 1 {
		return errors.Errorf("chunk size must be at least 1 MB, got %d", u.chunkSizeMB)
	}

	ds, err := dataset.ReadFile(inputFile)
	if err != nil {
		return errors.Wrapf(err, "loading %s", inputFile)
	}

	plan := PlanChunks(ds.SizeBytes(), u.chunkSizeMB, ds.NumRows())
	level.Info(u.logger).Log(
		"msg", "planned chunks",
		"rows", ds.NumRows(),
		"estimated_bytes", ds.SizeBytes(),
		"num_chunks", plan.NumChunks,
		"rows_per_chunk", plan.RowsPerChunk,
	)

	workDir, err := os.MkdirTemp("", "chunk-upload-")
	if err != nil {
		return errors.Wrap(err, "creating scratch directory")
	}
	defer os.RemoveAll(workDir)

	base := BaseFilename(inputFile)
	if u.concurrency > 1 {
		return u.runConcurrent(ctx, ds, plan, workDir, base, prefix)
	}
	for chunk := 0; chunk < plan.NumChunks; chunk++ {
		if err := u.processChunk(ctx, ds, plan, workDir, base, prefix, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uploader) runConcurrent(ctx context.Context, ds *dataset.Dataset, plan Plan, workDir, base, prefix string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for chunk := 0; chunk < plan.NumChunks; chunk++ {
		chunk := chunk
		g.Go(func() error {
			return u.processChunk(ctx, ds, plan, workDir, base, prefix, chunk)
		})
	}
	return g.Wait()
}

// processChunk serializes one chunk to a scratch file, uploads it and
// removes the file. The scratch file is removed even when the upload fails.
func (u *Uploader) processChunk(ctx context.Context, ds *dataset.Dataset, plan Plan, workDir, base, prefix string, chunk int) (chunkErr error) {
	ordinal := chunk + 1
	start, end := plan.Bounds(chunk, ds.NumRows())
	rows := ds.Slice(start, end)

	chunkPath := filepath.Join(workDir, fmt.Sprintf("chunk_%d.parquet", ordinal))
	if err := ds.WriteFile(chunkPath, rows); err != nil {
		return errors.Wrapf(err, "serializing chunk %d", ordinal)
	}
	defer func() {
		if err := os.Remove(chunkPath); err != nil && chunkErr == nil {
			chunkErr = errors.Wrapf(err, "removing scratch file for chunk %d", ordinal)
		}
	}()

	if err := dataset.VerifyFooter(chunkPath, len(rows)); err != nil {
		return errors.Wrapf(err, "verifying chunk %d", ordinal)
	}

	key := ObjectKey(prefix, base, ordinal)
	if err := u.upload(ctx, chunkPath, key); err != nil {
		return errors.Wrapf(err, "uploading chunk %d to %s", ordinal, key)
	}

	level.Info(u.logger).Log(
		"msg", "uploaded chunk",
		"ordinal", ordinal,
		"num_chunks", plan.NumChunks,
		"bucket", u.bucket.Name(),
		"key", key,
	)
	if u.onProgress != nil {
		u.progressMu.Lock()
		u.onProgress(ordinal, plan.NumChunks, u.bucket.Name(), key)
		u.progressMu.Unlock()
	}
	return nil
}

func (u *Uploader) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}

	started := time.Now()
	if err := u.bucket.Upload(ctx, key, f); err != nil {
		return err
	}
	u.metrics.uploadDuration.Observe(time.Since(started).Seconds())
	u.metrics.chunksUploaded.Inc()
	u.metrics.bytesUploaded.Add(float64(stat.Size()))
	return nil
}
