package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
)

const eventColumns = "id, name, description, date, availability, created_at, updated_at"

// EventRepo provides access to the events table.  All methods run on the
// transaction carried by ctx when there is one.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sqlx.DB) *EventRepo { return &EventRepo{db: db} }

// Create inserts e and fills in its generated id and timestamps.  A name
// or date that already exists yields ErrDuplicate.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	q := conn(ctx, r.db)
	id, err := insertID(ctx, q,
		"INSERT INTO events (name, description, date, availability) VALUES (?, ?, ?, ?)",
		e.Name, e.Description, e.Date.UTC(), e.Availability)
	if err != nil {
		return translate(err, ErrEventNotFound)
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*e = created
	return nil
}

// GetByID returns the event with the given id or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	q := conn(ctx, r.db)
	var e model.Event
	err := sqlx.GetContext(ctx, q, &e, q.Rebind("SELECT "+eventColumns+" FROM events WHERE id = ?"), id)
	return e, translate(err, ErrEventNotFound)
}

// GetForUpdate reads the event and locks its row until the surrounding
// transaction ends.  It must be called within Store.WithTx.
func (r *EventRepo) GetForUpdate(ctx context.Context, id uint64) (model.Event, error) {
	q := conn(ctx, r.db)
	var e model.Event
	err := sqlx.GetContext(ctx, q, &e, q.Rebind("SELECT "+eventColumns+" FROM events WHERE id = ? FOR UPDATE"), id)
	return e, translate(err, ErrEventNotFound)
}

// List returns all events ordered by date.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	q := conn(ctx, r.db)
	events := []model.Event{}
	err := sqlx.SelectContext(ctx, q, &events, "SELECT "+eventColumns+" FROM events ORDER BY date, id")
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ExistsByNameOrDate reports whether an event other than excludeID has the
// given name or date.  Pass 0 to consider every event.
func (r *EventRepo) ExistsByNameOrDate(ctx context.Context, name string, date time.Time, excludeID uint64) (bool, error) {
	q := conn(ctx, r.db)
	var n int
	err := sqlx.GetContext(ctx, q, &n,
		q.Rebind("SELECT COUNT(*) FROM events WHERE (name = ? OR date = ?) AND id <> ?"),
		name, date.UTC(), excludeID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update writes every mutable column of e and refreshes its timestamps.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	q := conn(ctx, r.db)
	n, err := exec(ctx, q,
		"UPDATE events SET name = ?, description = ?, date = ?, availability = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		e.Name, e.Description, e.Date.UTC(), e.Availability, e.ID)
	if err != nil {
		return translate(err, ErrEventNotFound)
	}
	if n == 0 {
		return ErrEventNotFound
	}
	updated, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = updated
	return nil
}

// Delete removes the event.  ErrForeignKey is returned while reservations
// still reference it.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	n, err := exec(ctx, conn(ctx, r.db), "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return translate(err, ErrEventNotFound)
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// AdjustAvailability subtracts n tickets from the event in a single
// conditional statement; a negative n gives tickets back.  The row is
// only changed when the result stays non-negative, otherwise
// ErrInsufficientAvailability is returned and nothing is written.
func (r *EventRepo) AdjustAvailability(ctx context.Context, id uint64, n int) error {
	if n == 0 {
		return nil
	}
	affected, err := exec(ctx, conn(ctx, r.db),
		"UPDATE events SET availability = availability - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND availability - ? >= 0",
		n, id, n)
	if err != nil {
		return err
	}
	if affected != 1 {
		return ErrInsufficientAvailability
	}
	return nil
}
