package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire format for domain events published to Kafka.
type Envelope struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Subject       string          `json:"subject"`
	Time          time.Time       `json:"time"`
	TenantID      string          `json:"tenantId,omitempty"`
	WarehouseID   string          `json:"warehouseId,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// EnvelopeFactory stamps envelopes with a fixed source identifier.
type EnvelopeFactory struct {
	source string
}

// NewEnvelopeFactory creates an EnvelopeFactory for the given source path
func NewEnvelopeFactory(source string) *EnvelopeFactory {
	return &EnvelopeFactory{source: source}
}

// New builds an Envelope for an event payload
func (f *EnvelopeFactory) New(eventType, subject string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &Envelope{
		ID:      uuid.New().String(),
		Type:    eventType,
		Source:  f.source,
		Subject: subject,
		Time:    time.Now().UTC(),
		Data:    data,
	}, nil
}
