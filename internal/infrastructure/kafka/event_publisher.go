package kafka

import (
	"context"
	"strings"

	"github.com/opsdash/platform/internal/domain"
	"github.com/opsdash/platform/pkg/kafka"
)

// EventPublisher routes domain events to their Kafka topics as JSON envelopes.
// Stock and batch events go to the inventory topic, sales to the sales topic
// and shipment events to the shipments topic.
type EventPublisher struct {
	producer *kafka.GuardedProducer
	factory  *kafka.EnvelopeFactory
}

// NewEventPublisher creates an EventPublisher
func NewEventPublisher(producer *kafka.GuardedProducer, factory *kafka.EnvelopeFactory) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		factory:  factory,
	}
}

func topicFor(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "shipment."):
		return kafka.Topics.ShipmentEvents
	case strings.HasPrefix(eventType, "sale."):
		return kafka.Topics.SalesEvents
	default:
		return kafka.Topics.InventoryEvents
	}
}

// Publish wraps the event in an envelope and sends it to its topic
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	envelope, err := p.factory.New(event.EventType(), event.AggregateID(), event)
	if err != nil {
		return err
	}

	return p.producer.PublishEvent(ctx, topicFor(event.EventType()), envelope)
}
