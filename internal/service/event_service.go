package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/event-ticket-reservation/internal/apperr"
	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/repository"
)

const maxNameLen = 255

// EventInput is the full set of fields for a new event.
type EventInput struct {
	Name         string
	Description  string
	Date         time.Time
	Availability int
}

// EventService manages events.  Names and dates are unique across events.
type EventService struct {
	tx           Transactor
	events       EventRepository
	reservations ReservationRepository
}

func NewEventService(tx Transactor, events EventRepository, reservations ReservationRepository) *EventService {
	return &EventService{tx: tx, events: events, reservations: reservations}
}

func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	out, err := s.events.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list events")
	}
	return out, nil
}

func (s *EventService) Get(ctx context.Context, id uint64) (model.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return model.Event{}, eventErr(err)
	}
	return e, nil
}

// Create stores a new event.  An existing name or date is a Conflict and
// nothing is inserted.
func (s *EventService) Create(ctx context.Context, in EventInput) (model.Event, error) {
	e := model.Event{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Date:         in.Date.UTC(),
		Availability: in.Availability,
	}
	if err := validateEvent(e); err != nil {
		return model.Event{}, err
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ensureUnique(ctx, e, 0); err != nil {
			return err
		}
		if err := s.events.Create(ctx, &e); err != nil {
			return writeErr(err, "create event")
		}
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}
	return e, nil
}

// Update applies a partial change to an event.
func (s *EventService) Update(ctx context.Context, id uint64, patch model.EventPatch) (model.Event, error) {
	var e model.Event
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.events.GetForUpdate(ctx, id)
		if err != nil {
			return eventErr(err)
		}
		patch.Apply(&e)
		e.Name = strings.TrimSpace(e.Name)
		if err := validateEvent(e); err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, e, e.ID); err != nil {
			return err
		}
		if err := s.events.Update(ctx, &e); err != nil {
			return writeErr(err, "update event")
		}
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}
	return e, nil
}

// Delete removes an event.  Events that still have reservations cannot be
// deleted.
func (s *EventService) Delete(ctx context.Context, id uint64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.events.GetForUpdate(ctx, id); err != nil {
			return eventErr(err)
		}
		n, err := s.reservations.CountByEvent(ctx, id)
		if err != nil {
			return apperr.Wrap(err, apperr.Internal, "count reservations")
		}
		if n > 0 {
			return apperr.Conflictf("event has %d reservation(s) and cannot be deleted", n)
		}
		if err := s.events.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrForeignKey) {
				return apperr.Wrap(err, apperr.Conflict, "event has reservations and cannot be deleted")
			}
			return eventErr(err)
		}
		return nil
	})
}

func (s *EventService) ensureUnique(ctx context.Context, e model.Event, excludeID uint64) error {
	exists, err := s.events.ExistsByNameOrDate(ctx, e.Name, e.Date, excludeID)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "check event uniqueness")
	}
	if exists {
		return apperr.Conflictf("an event with this name or date already exists")
	}
	return nil
}

func validateEvent(e model.Event) error {
	switch {
	case e.Name == "":
		return apperr.InvalidInputf("name is required")
	case len(e.Name) > maxNameLen:
		return apperr.InvalidInputf("name must not exceed %d characters", maxNameLen)
	case e.Date.IsZero():
		return apperr.InvalidInputf("date is required")
	case e.Availability < 0:
		return apperr.InvalidInputf("availability must not be negative")
	}
	return nil
}

func writeErr(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Wrap(err, apperr.Conflict, "an event with this name or date already exists")
	case errors.Is(err, repository.ErrEventNotFound):
		return apperr.Wrap(err, apperr.NotFound, "event not found")
	}
	return apperr.Wrap(err, apperr.Internal, op)
}
