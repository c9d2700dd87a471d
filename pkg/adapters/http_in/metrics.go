package http_in

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var ensureMetricRegisteringOnce sync.Once
var sizeHist *prometheus.HistogramVec
var rejectedCounter *prometheus.CounterVec

func initializeMetrics(metricRegistry *prometheus.Registry) {

	ensureMetricRegisteringOnce.Do(func() {

		sizeHist = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:      "request_body_size_bytes",
				Subsystem: "http",
				Namespace: "sucuri",
				Help:      "The size in bytes of (received) request body",
				Buckets:   []float64{0, 1024, 524288, 1048576, 2621440, 5242880, 10485760, 52428800, 104857600},
				// 0, 1KB, 512KB, 1MB, 2.5MB, 5MB, 10MB, 50MB, 100MB
			},
			[]string{"path"},
		)

		rejectedCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:      "rejected_requests_total",
				Subsystem: "http",
				Namespace: "sucuri",
				Help:      "Compression requests answered without any compressed image, by reason",
			},
			[]string{"path", "reason"},
		)

		metricRegistry.MustRegister(sizeHist, rejectedCounter)
	})

}
