// Package events carries rental lifecycle events over RabbitMQ.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	RentalCreated  EventType = "rental.created"
	RentalExtended EventType = "rental.extended"
)

// QueueName is the durable queue both the API and the consumer declare.
const QueueName = "rental.events"

// RentalEvent is published after a rental or extension commits. Amount is
// what was charged for this event; PricePaid is the running total.
type RentalEvent struct {
	Type       EventType `json:"type"`
	RentalID   int64     `json:"rental_id"`
	UserID     int64     `json:"user_id"`
	BookID     int64     `json:"book_id"`
	BookTitle  string    `json:"book_title,omitempty"`
	Days       int       `json:"days"`
	Amount     float64   `json:"amount"`
	PricePaid  float64   `json:"price_paid"`
	RentalEnd  time.Time `json:"rental_end"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Decode parses a delivery body and rejects unknown event types.
func Decode(body []byte) (RentalEvent, error) {
	var ev RentalEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return RentalEvent{}, fmt.Errorf("unmarshal rental event: %w", err)
	}
	switch ev.Type {
	case RentalCreated, RentalExtended:
		return ev, nil
	default:
		return RentalEvent{}, fmt.Errorf("unknown rental event type %q", ev.Type)
	}
}
