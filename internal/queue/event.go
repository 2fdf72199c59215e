// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Reservation event types.
const (
	ReservationCreated   = "reservation.created"
	ReservationUpdated   = "reservation.updated"
	ReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a reservation change commits.  It
// carries enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.  Availability
// is the event's remaining ticket count after the change.
type ReservationEvent struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	ReservationID   uint64    `json:"reservation_id"`
	EventID         uint64    `json:"event_id"`
	UserID          uint64    `json:"user_id"`
	NumberOfTickets int       `json:"number_of_tickets"`
	PreviousTickets int       `json:"previous_tickets"`
	Availability    int       `json:"availability"`
	OccurredAt      time.Time `json:"occurred_at"`
}
