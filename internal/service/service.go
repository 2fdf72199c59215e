// Package service holds the business rules for events and reservations.
// Services own transaction boundaries and translate repository errors into
// apperr kinds; they never see SQL.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/queue"
)

// Transactor runs fn as one unit of work.  Repositories called with the ctx
// passed to fn take part in the same transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventRepository is the persistence contract for events.
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	ExistsByNameOrDate(ctx context.Context, name string, date time.Time, excludeID uint64) (bool, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id uint64) error
	AdjustAvailability(ctx context.Context, id uint64, n int) error
}

// ReservationRepository is the persistence contract for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error)
	List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
	UpdateTickets(ctx context.Context, r *model.Reservation, tickets int) error
	Delete(ctx context.Context, id uint64) error
	CountByEvent(ctx context.Context, eventID uint64) (int, error)
}

// Publisher delivers reservation events after commit.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}
