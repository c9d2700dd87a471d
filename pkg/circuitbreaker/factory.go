package circuitbreaker

import (
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const NAME_METRIC_KEY string = "name"

const FIXED_FAIL_COUNT_THRESHOLD = 1

// Only one probe request is let through while half-open.
const halfOpenMaxRequests = 1

// PassThrough never trips. It is used when the breaker is turned off.
type PassThrough struct{}

func NewPassThrough() *PassThrough {
	return &PassThrough{}
}

func (cb *PassThrough) Execute(f func() (interface{}, error)) (interface{}, error) {
	return f()
}

// FromConfig builds a breaker that opens on the first failure and lets a single probe through once
// the open interval is over.
func FromConfig(
	log *zap.SugaredLogger, registry *prometheus.Registry, cbConf config.CircuitBreakerConfig, name string,
) CircuitBreaker {

	if !cbConf.TurnOn {
		log.Warnw("circuit breaker not being used", NAME_METRIC_KEY, name)
		return NewPassThrough()
	}

	reporter := newStateReporter(registry, log, name)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpenMaxRequests,
		Timeout:     cbConf.OpenIntervalAsDuration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= FIXED_FAIL_COUNT_THRESHOLD
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			reporter.changed(from, to)
		},
	})
}
