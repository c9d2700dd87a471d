package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

var itemsCounter *prometheus.CounterVec
var compressionRatioHist *prometheus.HistogramVec
var ensureSingleMetricRegistration sync.Once

func initializeMetrics(metricRegistry *prometheus.Registry) {
	ensureSingleMetricRegistration.Do(func() {
		itemsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sucuri",
				Subsystem: "pipeline",
				Name:      "items_total",
				Help:      "How many images went through a batch, by outcome.",
			},
			[]string{"outcome"})

		compressionRatioHist = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sucuri",
				Subsystem: "pipeline",
				Name:      "compression_ratio",
				Help:      "the ratio of compressed size vs original size (the lower the better compression)",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.15, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.5, 2.0},
			},
			[]string{"target_met"})

		metricRegistry.MustRegister(itemsCounter, compressionRatioHist)
	})
}

func reportItem(outcome string) {
	itemsCounter.WithLabelValues(outcome).Inc()
}

func reportCompressionRatio(targetMet bool, ratio float64) {
	label := "false"
	if targetMet {
		label = "true"
	}
	compressionRatioHist.WithLabelValues(label).Observe(ratio)
}
