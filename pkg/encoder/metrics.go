package encoder

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var attemptsHist *prometheus.HistogramVec
var durationHist *prometheus.HistogramVec
var targetMissedCounter *prometheus.CounterVec
var ensureSingleMetricRegistration sync.Once

func initializeMetrics(metricRegistry *prometheus.Registry) {
	ensureSingleMetricRegistration.Do(func() {
		attemptsHist = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sucuri",
				Subsystem: "encoder",
				Name:      "attempts",
				Help:      "How many quality levels were tried before an encoding was accepted.",
				Buckets:   []float64{1, 2, 3, 4, 6, 8, 10, 12, 14, 16},
			},
			[]string{"codec"})

		durationHist = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sucuri",
				Subsystem: "encoder",
				Name:      "duration_millis",
				Help:      "The time it took to find an encoding for one image, in milliseconds",
				Buckets:   []float64{5.0, 10.0, 25.0, 50.0, 125.0, 250.0, 500.0, 1000.0, 5000.0, 30000.0},
			},
			[]string{"codec"})

		targetMissedCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sucuri",
				Subsystem: "encoder",
				Name:      "target_missed_total",
				Help:      "How many images could not reach the target size even at the lowest quality.",
			},
			[]string{"codec"})

		metricRegistry.MustRegister(attemptsHist, durationHist, targetMissedCounter)
	})
}

func reportAttempts(codec string, attempts int) {
	attemptsHist.WithLabelValues(codec).Observe(float64(attempts))
}

func reportDuration(codec string, duration time.Duration) {
	durationHist.WithLabelValues(codec).Observe(float64(duration.Milliseconds()))
}

func reportTargetMissed(codec string) {
	targetMissedCounter.WithLabelValues(codec).Inc()
}
