package messaging

import (
	"context"
)

const (
	// OrdersPlacedSubject carries OrderPlacedEvent payloads.
	OrdersPlacedSubject = "orders.placed"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Identified events are de-duplicated by the broker on their id.
type Identified interface {
	MessageID() string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
