package externalqueue

import (
	"context"
	"sync"
	"time"

	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	queueTypeLabel = "queue_type"
	nameLabel      = "name"
	outcomeLabel   = "outcome"

	outcomeSuccess = "success"
	outcomeError   = "error"
)

var (
	ensureMetricRegisteringOnce sync.Once
	notificationLatency         *prometheus.HistogramVec
	notifications               *prometheus.CounterVec
	announcedBundleSize         *prometheus.HistogramVec
)

// bundleNotifier records the notifications sent about delivered bundles.
type bundleNotifier struct {
	queue     ExternalQueue
	queueType string
	name      string
}

func NewExternalQueueWithMetrics(queue ExtQueueWithMetadata, metricRegistry *prometheus.Registry) ExtQueueWithMetadata {
	ensureMetricRegisteringOnce.Do(func() {
		notificationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:      "bundle_notification_latency_seconds",
				Subsystem: "external_queue",
				Namespace: "sucuri",
				Help:      "time spent publishing a bundle notification, by outcome",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{queueTypeLabel, nameLabel, outcomeLabel},
		)

		notifications = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:      "bundle_notifications_total",
				Namespace: "sucuri",
				Subsystem: "external_queue",
				Help:      "count of bundle notifications published, by outcome",
			},
			[]string{queueTypeLabel, nameLabel, outcomeLabel},
		)

		announcedBundleSize = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:      "announced_bundle_size_in_bytes",
				Subsystem: "external_queue",
				Namespace: "sucuri",
				Help:      "size of the bundles whose notification was published",
				Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8),
			},
			[]string{queueTypeLabel, nameLabel},
		)

		metricRegistry.MustRegister(notificationLatency, notifications, announcedBundleSize)
	})

	return &bundleNotifier{
		queue:     queue,
		queueType: queue.Type(),
		name:      queue.Name(),
	}
}

func (w *bundleNotifier) Enqueue(ctx context.Context, msg *domain.Message) error {
	startTime := time.Now()
	err := w.queue.Enqueue(ctx, msg)
	elapsed := time.Since(startTime).Seconds()

	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	notificationLatency.WithLabelValues(w.queueType, w.name, outcome).Observe(elapsed)
	notifications.WithLabelValues(w.queueType, w.name, outcome).Inc()

	if err == nil {
		announcedBundleSize.WithLabelValues(w.queueType, w.name).Observe(float64(msg.Object.SizeInBytes))
	}
	return err
}

func (w *bundleNotifier) Type() string {
	return w.queueType
}

func (w *bundleNotifier) Name() string {
	return w.name
}
