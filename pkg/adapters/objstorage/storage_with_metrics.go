package objstorage

import (
	"context"
	"sync"
	"time"

	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	storageTypeLabel = "storage_type"
	nameLabel        = "name"
	outcomeLabel     = "outcome"

	outcomeSuccess = "success"
	outcomeError   = "error"
)

var (
	ensureMetricRegisteringOnce sync.Once
	uploadLatency               *prometheus.HistogramVec
	uploads                     *prometheus.CounterVec
	uploadedBundleSize          *prometheus.HistogramVec
	uploadedBytes               *prometheus.CounterVec
)

// bundleStorage records how long bundle uploads take and how big the delivered bundles are.
type bundleStorage struct {
	storage     ObjStorage
	storageType string
	name        string
}

func NewStorageWithMetrics(storage ObjStorageWithMetadata, metricRegistry *prometheus.Registry) ObjStorageWithMetadata {
	ensureMetricRegisteringOnce.Do(func() {
		uploadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:      "bundle_upload_latency_seconds",
				Subsystem: "object_storage",
				Namespace: "sucuri",
				Help:      "time spent uploading a bundle to object storage, by outcome",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
			},
			[]string{storageTypeLabel, nameLabel, outcomeLabel},
		)

		uploads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:      "bundle_uploads_total",
				Namespace: "sucuri",
				Subsystem: "object_storage",
				Help:      "count of bundle uploads to object storage, by outcome",
			},
			[]string{storageTypeLabel, nameLabel, outcomeLabel},
		)

		uploadedBundleSize = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:      "uploaded_bundle_size_in_bytes",
				Subsystem: "object_storage",
				Namespace: "sucuri",
				Help:      "size of the bundles successfully stored",
				// 16kb up to 256mb
				Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
			},
			[]string{storageTypeLabel, nameLabel},
		)

		uploadedBytes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:      "uploaded_bytes_total",
				Namespace: "sucuri",
				Subsystem: "object_storage",
				Help:      "sum of the sizes of the bundles successfully stored",
			},
			[]string{storageTypeLabel, nameLabel},
		)

		metricRegistry.MustRegister(uploadLatency, uploads, uploadedBundleSize, uploadedBytes)
	})

	return &bundleStorage{
		storage:     storage,
		storageType: storage.Type(),
		name:        storage.Name(),
	}
}

func (w *bundleStorage) Upload(ctx context.Context, workU *domain.WorkUnit) (*domain.UploadResult, error) {
	startTime := time.Now()
	uploadResult, err := w.storage.Upload(ctx, workU)
	elapsed := time.Since(startTime).Seconds()

	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	uploadLatency.WithLabelValues(w.storageType, w.name, outcome).Observe(elapsed)
	uploads.WithLabelValues(w.storageType, w.name, outcome).Inc()

	if err == nil {
		size := float64(len(workU.Data))
		if uploadResult != nil && uploadResult.SizeInBytes > 0 {
			size = float64(uploadResult.SizeInBytes)
		}
		uploadedBundleSize.WithLabelValues(w.storageType, w.name).Observe(size)
		uploadedBytes.WithLabelValues(w.storageType, w.name).Add(size)
	}
	return uploadResult, err
}

func (w *bundleStorage) Type() string {
	return w.storageType
}

func (w *bundleStorage) Name() string {
	return w.name
}
