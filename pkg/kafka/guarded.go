package kafka

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opsdash/platform/pkg/logging"
	"github.com/opsdash/platform/pkg/metrics"
)

// GuardedProducer wraps a Producer with a circuit breaker, metrics and logging.
// When the broker is unhealthy the breaker opens and publishes fail fast instead
// of holding request goroutines on broker timeouts.
type GuardedProducer struct {
	producer *Producer
	breaker  *gobreaker.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewGuardedProducer creates a GuardedProducer
func NewGuardedProducer(producer *Producer, m *metrics.Metrics, logger *logging.Logger) *GuardedProducer {
	gp := &GuardedProducer{
		producer: producer,
		metrics:  m,
		logger:   logger.WithComponent("kafka-producer"),
	}

	gp.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-publish",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			gp.logger.Warn("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			if m != nil {
				m.SetCircuitBreakerState(name, int(to))
				if to == gobreaker.StateOpen {
					m.RecordCircuitBreakerTrip(name)
				}
			}
		},
	})

	return gp
}

// PublishEvent publishes an envelope through the circuit breaker
func (gp *GuardedProducer) PublishEvent(ctx context.Context, topic string, event *Envelope) error {
	start := time.Now()

	_, err := gp.breaker.Execute(func() (interface{}, error) {
		return nil, gp.producer.PublishEvent(ctx, topic, event)
	})

	duration := time.Since(start)
	if gp.metrics != nil {
		gp.metrics.RecordKafkaPublish(topic, event.Type, err == nil, duration)
	}
	gp.logger.KafkaPublish(ctx, topic, event.Type, err == nil, duration)

	return err
}

// Close closes the underlying producer
func (gp *GuardedProducer) Close() error {
	return gp.producer.Close()
}
