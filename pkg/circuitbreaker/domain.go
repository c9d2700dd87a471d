package circuitbreaker

type CircuitBreaker interface {
	Execute(func() (interface{}, error)) (interface{}, error)
}
