package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
)

const reservationColumns = "id, user_id, event_id, number_of_tickets, created_at, updated_at"

// ReservationRepo provides CRUD operations for reservations.  Availability
// bookkeeping is not done here; callers pair these writes with
// EventRepo.AdjustAvailability inside one transaction.
type ReservationRepo struct {
	db *sqlx.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Create inserts res and populates its id and timestamps.  A user or event
// id that does not exist yields ErrForeignKey.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	q := conn(ctx, r.db)
	id, err := insertID(ctx, q,
		"INSERT INTO reservations (user_id, event_id, number_of_tickets) VALUES (?, ?, ?)",
		res.UserID, res.EventID, res.NumberOfTickets)
	if err != nil {
		return translate(err, ErrReservationNotFound)
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*res = created
	return nil
}

// GetByID returns the reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	q := conn(ctx, r.db)
	var res model.Reservation
	err := sqlx.GetContext(ctx, q, &res, q.Rebind("SELECT "+reservationColumns+" FROM reservations WHERE id = ?"), id)
	return res, translate(err, ErrReservationNotFound)
}

// GetForUpdate reads the reservation and locks its row for the rest of the
// surrounding transaction.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
	q := conn(ctx, r.db)
	var res model.Reservation
	err := sqlx.GetContext(ctx, q, &res, q.Rebind("SELECT "+reservationColumns+" FROM reservations WHERE id = ? FOR UPDATE"), id)
	return res, translate(err, ErrReservationNotFound)
}

// List returns reservations matching the filter ordered by id.
func (r *ReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	q := conn(ctx, r.db)
	var (
		where []string
		args  []any
	)
	if f.EventID != nil {
		where = append(where, "event_id = ?")
		args = append(args, *f.EventID)
	}
	if f.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *f.UserID)
	}
	query := "SELECT " + reservationColumns + " FROM reservations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	out := []model.Reservation{}
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(query), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTickets sets number_of_tickets and refreshes res from the database.
func (r *ReservationRepo) UpdateTickets(ctx context.Context, res *model.Reservation, tickets int) error {
	q := conn(ctx, r.db)
	n, err := exec(ctx, q,
		"UPDATE reservations SET number_of_tickets = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		tickets, res.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	updated, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = updated
	return nil
}

// Delete removes the reservation row.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	n, err := exec(ctx, conn(ctx, r.db), "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// CountByEvent returns how many reservations reference the event.
func (r *ReservationRepo) CountByEvent(ctx context.Context, eventID uint64) (int, error) {
	q := conn(ctx, r.db)
	var n int
	err := sqlx.GetContext(ctx, q, &n, q.Rebind("SELECT COUNT(*) FROM reservations WHERE event_id = ?"), eventID)
	return n, err
}
