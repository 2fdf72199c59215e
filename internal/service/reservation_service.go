package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticket-reservation/internal/apperr"
	"github.com/iliyamo/event-ticket-reservation/internal/clock"
	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/queue"
	"github.com/iliyamo/event-ticket-reservation/internal/repository"
)

const publishTimeout = 5 * time.Second

// CreateReservationInput is the request to reserve tickets for an event.
type CreateReservationInput struct {
	EventID         uint64
	UserID          uint64
	NumberOfTickets int
}

// ReservationService keeps Event.availability consistent with the set of
// reservations.  Every mutating call locks the rows it reads and writes
// availability with a conditional update, all in one transaction.
type ReservationService struct {
	tx           Transactor
	events       EventRepository
	reservations ReservationRepository
	publisher    Publisher
	clock        clock.Clock
	horizon      time.Duration
	log          *slog.Logger
}

// NewReservationService wires a ReservationService.  horizon is how far in
// the future an event may be and still accept reservations.
func NewReservationService(tx Transactor, events EventRepository, reservations ReservationRepository,
	publisher Publisher, clk clock.Clock, horizon time.Duration, log *slog.Logger) *ReservationService {
	if publisher == nil {
		publisher = queue.NoopPublisher{}
	}
	return &ReservationService{
		tx:           tx,
		events:       events,
		reservations: reservations,
		publisher:    publisher,
		clock:        clk,
		horizon:      horizon,
		log:          log,
	}
}

// List returns reservations matching the filter ordered by id.
func (s *ReservationService) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	out, err := s.reservations.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list reservations")
	}
	return out, nil
}

// Get returns one reservation.
func (s *ReservationService) Get(ctx context.Context, id uint64) (model.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, reservationErr(err)
	}
	return r, nil
}

// Create validates the request against the locked event row, takes the
// tickets from its availability and stores the reservation.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (model.Reservation, error) {
	var (
		res       model.Reservation
		remaining int
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.events.GetForUpdate(ctx, in.EventID)
		if err != nil {
			return eventErr(err)
		}
		if err := s.validate(ev, in.NumberOfTickets); err != nil {
			return err
		}
		if err := s.events.AdjustAvailability(ctx, ev.ID, in.NumberOfTickets); err != nil {
			return availabilityErr(err, ev)
		}
		res = model.Reservation{UserID: in.UserID, EventID: ev.ID, NumberOfTickets: in.NumberOfTickets}
		if err := s.reservations.Create(ctx, &res); err != nil {
			if errors.Is(err, repository.ErrForeignKey) {
				return apperr.Wrap(err, apperr.NotFound, "user not found")
			}
			return apperr.Wrap(err, apperr.Internal, "create reservation")
		}
		remaining = ev.Availability - in.NumberOfTickets
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(ctx, queue.ReservationCreated, res, 0, remaining)
	return res, nil
}

// validate applies the reservation rules in order: event not ended, event
// within the horizon, enough tickets, positive ticket count.
func (s *ReservationService) validate(ev model.Event, tickets int) error {
	now := s.clock.Now()
	switch {
	case ev.Date.Before(now):
		return apperr.InvalidStatef("event has ended for event %q", ev.Name)
	case ev.Date.After(now.Add(s.horizon)):
		return apperr.InvalidStatef("tickets available at a later date for event %q", ev.Name)
	case ev.Availability < tickets:
		return apperr.InvalidStatef("not enough tickets available for event %q", ev.Name)
	case tickets <= 0:
		return apperr.InvalidInputf("please enter a valid number of tickets")
	}
	return nil
}

// Update changes the ticket count of a reservation.  Only the difference is
// taken from (or given back to) the event.
func (s *ReservationService) Update(ctx context.Context, id uint64, tickets int) (model.Reservation, error) {
	if tickets < 1 {
		return model.Reservation{}, apperr.InvalidInputf("number of tickets must be at least 1")
	}
	var (
		res       model.Reservation
		previous  int
		remaining int
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.reservations.GetForUpdate(ctx, id)
		if err != nil {
			return reservationErr(err)
		}
		ev, err := s.events.GetForUpdate(ctx, res.EventID)
		if err != nil {
			return eventErr(err)
		}
		previous = res.NumberOfTickets
		delta := tickets - previous
		if ev.Availability < delta {
			return apperr.InvalidStatef("not enough tickets available for event %q", ev.Name)
		}
		if err := s.events.AdjustAvailability(ctx, ev.ID, delta); err != nil {
			return availabilityErr(err, ev)
		}
		if err := s.reservations.UpdateTickets(ctx, &res, tickets); err != nil {
			return reservationErr(err)
		}
		remaining = ev.Availability - delta
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(ctx, queue.ReservationUpdated, res, previous, remaining)
	return res, nil
}

// Delete cancels a reservation and returns its tickets to the event.
func (s *ReservationService) Delete(ctx context.Context, id uint64) error {
	var (
		res       model.Reservation
		remaining int
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.reservations.GetForUpdate(ctx, id)
		if err != nil {
			return reservationErr(err)
		}
		ev, err := s.events.GetForUpdate(ctx, res.EventID)
		if err != nil {
			return eventErr(err)
		}
		if err := s.events.AdjustAvailability(ctx, ev.ID, -res.NumberOfTickets); err != nil {
			return apperr.Wrap(err, apperr.Internal, "restore availability")
		}
		if err := s.reservations.Delete(ctx, res.ID); err != nil {
			return reservationErr(err)
		}
		remaining = ev.Availability + res.NumberOfTickets
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, queue.ReservationCancelled, res, res.NumberOfTickets, remaining)
	return nil
}

// publish sends a domain event after commit.  Failures are logged only.
func (s *ReservationService) publish(ctx context.Context, typ string, res model.Reservation, previous, remaining int) {
	ev := queue.ReservationEvent{
		ID:              uuid.NewString(),
		Type:            typ,
		ReservationID:   res.ID,
		EventID:         res.EventID,
		UserID:          res.UserID,
		NumberOfTickets: res.NumberOfTickets,
		PreviousTickets: previous,
		Availability:    remaining,
		OccurredAt:      s.clock.Now(),
	}
	if typ == queue.ReservationCancelled {
		ev.NumberOfTickets = 0
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish reservation event failed", "type", typ, "reservation_id", res.ID, "err", err)
	}
}

func eventErr(err error) error {
	if errors.Is(err, repository.ErrEventNotFound) {
		return apperr.Wrap(err, apperr.NotFound, "event not found")
	}
	return apperr.Wrap(err, apperr.Internal, "load event")
}

func reservationErr(err error) error {
	if errors.Is(err, repository.ErrReservationNotFound) {
		return apperr.Wrap(err, apperr.NotFound, "reservation not found")
	}
	return apperr.Wrap(err, apperr.Internal, "load reservation")
}

func availabilityErr(err error, ev model.Event) error {
	if errors.Is(err, repository.ErrInsufficientAvailability) {
		return apperr.Wrap(err, apperr.InvalidState, fmt.Sprintf("not enough tickets available for event %q", ev.Name))
	}
	return apperr.Wrap(err, apperr.Internal, "update availability")
}
