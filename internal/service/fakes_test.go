package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/queue"
	"github.com/iliyamo/event-ticket-reservation/internal/repository"
)

// memStore is an in-memory database.  Transactions are serialized, which
// is the strongest outcome row locks can give, and roll back by restoring
// a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	events       map[uint64]model.Event
	reservations map[uint64]model.Reservation
	users        map[uint64]bool
	nextEvent    uint64
	nextRes      uint64

	createErr error
}

func newMemStore() *memStore {
	return &memStore{
		events:       map[uint64]model.Event{},
		reservations: map[uint64]model.Reservation{},
		users:        map[uint64]bool{1: true, 2: true},
	}
}

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	events := make(map[uint64]model.Event, len(m.events))
	for k, v := range m.events {
		events[k] = v
	}
	reservations := make(map[uint64]model.Reservation, len(m.reservations))
	for k, v := range m.reservations {
		reservations[k] = v
	}
	nextEvent, nextRes := m.nextEvent, m.nextRes
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.events, m.reservations = events, reservations
		m.nextEvent, m.nextRes = nextEvent, nextRes
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) addEvent(name string, date time.Time, availability int) model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEvent++
	e := model.Event{ID: m.nextEvent, Name: name, Date: date.UTC(), Availability: availability}
	m.events[e.ID] = e
	return e
}

func (m *memStore) availability(id uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[id].Availability
}

func (m *memStore) reservationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reservations)
}

type memEvents struct{ *memStore }

func (r memEvents) Create(_ context.Context, e *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.events {
		if other.Name == e.Name || other.Date.Equal(e.Date) {
			return repository.ErrDuplicate
		}
	}
	r.nextEvent++
	e.ID = r.nextEvent
	r.events[e.ID] = *e
	return nil
}

func (r memEvents) GetByID(_ context.Context, id uint64) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return e, nil
}

func (r memEvents) GetForUpdate(ctx context.Context, id uint64) (model.Event, error) {
	return r.GetByID(ctx, id)
}

func (r memEvents) List(context.Context) ([]model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Event{}
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r memEvents) ExistsByNameOrDate(_ context.Context, name string, date time.Time, excludeID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID != excludeID && (e.Name == name || e.Date.Equal(date)) {
			return true, nil
		}
	}
	return false, nil
}

func (r memEvents) Update(_ context.Context, e *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return repository.ErrEventNotFound
	}
	r.events[e.ID] = *e
	return nil
}

func (r memEvents) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r memEvents) AdjustAvailability(_ context.Context, id uint64, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.Availability-n < 0 {
		return repository.ErrInsufficientAvailability
	}
	e.Availability -= n
	r.events[id] = e
	return nil
}

type memReservations struct{ *memStore }

func (r memReservations) Create(_ context.Context, res *model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if !r.users[res.UserID] {
		return repository.ErrForeignKey
	}
	r.nextRes++
	res.ID = r.nextRes
	r.reservations[res.ID] = *res
	return nil
}

func (r memReservations) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrReservationNotFound
	}
	return res, nil
}

func (r memReservations) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r memReservations) List(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Reservation{}
	for _, res := range r.reservations {
		if f.EventID != nil && res.EventID != *f.EventID {
			continue
		}
		if f.UserID != nil && res.UserID != *f.UserID {
			continue
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memReservations) UpdateTickets(_ context.Context, res *model.Reservation, tickets int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.reservations[res.ID]
	if !ok {
		return repository.ErrReservationNotFound
	}
	cur.NumberOfTickets = tickets
	r.reservations[res.ID] = cur
	*res = cur
	return nil
}

func (r memReservations) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(r.reservations, id)
	return nil
}

func (r memReservations) CountByEvent(_ context.Context, eventID uint64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.reservations {
		if res.EventID == eventID {
			n++
		}
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
