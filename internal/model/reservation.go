package model

import "time"

// Reservation records a user's claim on a number of tickets for one event.
// It corresponds to a row in the `reservations` table.
type Reservation struct {
	ID              uint64    `db:"id"                json:"id"`
	UserID          uint64    `db:"user_id"           json:"user_id"`
	EventID         uint64    `db:"event_id"          json:"event_id"`
	NumberOfTickets int       `db:"number_of_tickets" json:"number_of_tickets"`
	CreatedAt       time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"        json:"updated_at"`
}

// ReservationFilter narrows a reservation listing.  Nil fields do not filter.
type ReservationFilter struct {
	EventID *uint64
	UserID  *uint64
}
