package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerPublisher guards an EventPublisher with a circuit breaker so a dead
// broker is not hit on every write.
type BreakerPublisher struct {
	inner   EventPublisher
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerPublisher wraps inner. The circuit opens when at least 60% of
// three or more publishes in a 15s window fail and retries after 30s.
func NewBreakerPublisher(inner EventPublisher, log logrus.FieldLogger) *BreakerPublisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	return &BreakerPublisher{inner: inner, breaker: cb}
}

// Publish forwards to the wrapped publisher unless the circuit is open, in
// which case gobreaker.ErrOpenState is returned.
func (p *BreakerPublisher) Publish(routingKey string, body []byte) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.inner.Publish(routingKey, body)
	})
	return err
}

// State reports the circuit state ("closed", "open" or "half-open").
func (p *BreakerPublisher) State() string {
	return p.breaker.State().String()
}
