// Package event publishes rental lifecycle events for downstream consumers
// such as notification or analytics services.
package event

import (
	"context"
	"time"
)

type Type string

const (
	TypeRentalRequested Type = "rental.requested"
	TypeRentalApproved  Type = "rental.approved"
	TypeRentalRejected  Type = "rental.rejected"
	TypeRentalCancelled Type = "rental.cancelled"
)

// RentalEvent carries enough of a rental's state that consumers need not query the database.
type RentalEvent struct {
	Type           Type      `json:"type"`
	RentalID       string    `json:"rental_id"`
	RoomID         string    `json:"room_id"`
	RenterID       string    `json:"renter_id"`
	ActorID        string    `json:"actor_id,omitempty"`
	Status         string    `json:"status"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TotalCostCents *int64    `json:"total_cost_cents,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher delivers events to a broker. Publish must return without waiting on the broker.
type Publisher interface {
	Publish(ctx context.Context, e RentalEvent) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RentalEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
