// Package repository implements SQL persistence for events, reservations,
// users and access tokens.  Repositories return the sentinel errors below
// so that the service layer can map failures to domain error kinds
// without inspecting driver errors.
package repository

import "errors"

var (
	// ErrEventNotFound is returned when no event row matches the id.
	ErrEventNotFound = errors.New("event not found")
	// ErrReservationNotFound is returned when no reservation row matches.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrUserNotFound is returned when no user row matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenNotFound is returned for unknown, expired or revoked tokens.
	ErrTokenNotFound = errors.New("token not found")
	// ErrDuplicate signals a unique constraint violation.
	ErrDuplicate = errors.New("duplicate key")
	// ErrForeignKey signals a foreign key violation, e.g. a reservation
	// referencing a user that does not exist or an event that still has
	// reservations being deleted.
	ErrForeignKey = errors.New("foreign key violation")
	// ErrInsufficientAvailability is returned when a conditional
	// availability update matched no row.
	ErrInsufficientAvailability = errors.New("insufficient availability")
)
