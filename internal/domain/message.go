package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntityKind tags which entity an inbound message refers to.
type EntityKind string

const (
	EntitySubmission EntityKind = "submission"
	EntityDeposit    EntityKind = "deposit"
)

// Message is an entity-changed notification delivered by the message transport.
type Message struct {
	ID        string
	Kind      EntityKind
	EntityID  string
	Timestamp time.Time
	// Redelivered counts how many times the transport delivered this message before.
	Redelivered int
}

// Validate rejects messages that can never be processed.
func (m Message) Validate() error {
	if strings.TrimSpace(m.EntityID) == "" {
		return fmt.Errorf("%w: missing entity identifier", ErrInvalidMessage)
	}
	switch m.Kind {
	case EntitySubmission, EntityDeposit:
		return nil
	default:
		return fmt.Errorf("%w: unknown entity kind %q", ErrInvalidMessage, m.Kind)
	}
}

// Disposition tells the message transport what to do with a delivery.
type Disposition int

const (
	// DispositionAck acknowledges the delivery; it will not be redelivered.
	DispositionAck Disposition = iota
	// DispositionDefer leaves the delivery unacknowledged so the transport
	// redelivers it later.
	DispositionDefer
)

func (d Disposition) String() string {
	switch d {
	case DispositionAck:
		return "ack"
	case DispositionDefer:
		return "defer"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}
