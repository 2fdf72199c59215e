package model

import "time"

// Event represents a ticketed event as stored in the `events` table.
// Availability is the number of tickets not yet reserved; it is mutated
// only by reservation create/update/delete and by explicit admin updates.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – unique event name.
//  Description  – free-form description.
//  Date         – when the event takes place (UTC, unique).
//  Availability – remaining unreserved tickets, never negative.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Event struct {
	ID           uint64    `db:"id"           json:"id"`
	Name         string    `db:"name"         json:"name"`
	Description  string    `db:"description"  json:"description"`
	Date         time.Time `db:"date"         json:"date"`
	Availability int       `db:"availability" json:"availability"`
	CreatedAt    time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"   json:"updated_at"`
}

// EventPatch carries the fields of a partial event update.  Nil fields are
// left unchanged.
type EventPatch struct {
	Name         *string
	Description  *string
	Date         *time.Time
	Availability *int
}

// Apply copies the non-nil fields of p onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = p.Date.UTC()
	}
	if p.Availability != nil {
		e.Availability = *p.Availability
	}
}
