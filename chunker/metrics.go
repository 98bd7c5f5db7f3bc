package chunker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	chunksUploaded prometheus.Counter
	bytesUploaded  prometheus.Counter
	uploadDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		chunksUploaded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "chunk_uploads_total",
			Help: "Number of chunks uploaded to the bucket.",
		}),
		bytesUploaded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "chunk_upload_bytes_total",
			Help: "Serialized bytes uploaded to the bucket.",
		}),
		uploadDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "chunk_upload_duration_seconds",
			Help:    "Time spent uploading a single chunk.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
