package circuitbreaker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ensureMetricRegisteringOnce sync.Once

var stateGauge *prometheus.GaugeVec
var transitionsCounter *prometheus.CounterVec

// stateValue maps breaker states to the gauge: closed 0, half-open 0.5, open 1.
var stateValue = map[gobreaker.State]float64{
	gobreaker.StateClosed:   0.0,
	gobreaker.StateHalfOpen: 0.5,
	gobreaker.StateOpen:     1.0,
}

type stateReporter struct {
	name string
	log  *zap.SugaredLogger
}

func newStateReporter(registry *prometheus.Registry, log *zap.SugaredLogger, name string) *stateReporter {
	ensureMetricRegisteringOnce.Do(func() {
		stateGauge = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "sucuri",
				Name:      "circuitbreaker_state",
				Help:      "State of the circuit breaker: 0 closed, 0.5 half-open, 1 open",
			},
			[]string{NAME_METRIC_KEY},
		)

		transitionsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sucuri",
				Name:      "circuitbreaker_transitions_total",
				Help:      "How many times the circuit breaker changed to a state",
			},
			[]string{NAME_METRIC_KEY, "to"},
		)

		registry.MustRegister(stateGauge, transitionsCounter)
	})

	stateGauge.WithLabelValues(name).Set(stateValue[gobreaker.StateClosed])
	return &stateReporter{
		name: name,
		log:  log.With(NAME_METRIC_KEY, name),
	}
}

func (reporter *stateReporter) changed(from gobreaker.State, to gobreaker.State) {
	stateGauge.WithLabelValues(reporter.name).Set(stateValue[to])
	transitionsCounter.WithLabelValues(reporter.name, to.String()).Inc()

	if to == gobreaker.StateOpen {
		reporter.log.Warnw("circuitbreaker is open", "from", from.String())
		return
	}
	reporter.log.Infow("circuitbreaker changed state", "from", from.String(), "to", to.String())
}
