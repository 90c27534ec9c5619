package out

import (
	"context"

	"github.com/bnema/ferry/internal/domain"
)

// Delivery is one delivery of a message. Exactly one of Ack or Nack should
// be called; a delivery that is never settled is redelivered.
type Delivery interface {
	Message() domain.Message
	Ack() error
	Nack() error
}

// MessagePublisher defines the contract for publishing entity-changed messages.
type MessagePublisher interface {
	Publish(ctx context.Context, kind domain.EntityKind, entityID string) error
}

// MessageQueue combines publishing and consuming with lifecycle management.
type MessageQueue interface {
	MessagePublisher
	Deliveries() <-chan Delivery
	Start() error
	Stop() error
}
