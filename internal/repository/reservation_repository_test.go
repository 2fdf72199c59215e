package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
)

var reservationCols = []string{"id", "user_id", "event_id", "number_of_tickets", "created_at", "updated_at"}

func TestReservationListFilters(t *testing.T) {
	now := time.Now().UTC()
	eventID, userID := uint64(3), uint64(4)

	cases := []struct {
		name   string
		filter model.ReservationFilter
		query  string
		args   []any
	}{
		{"none", model.ReservationFilter{}, "FROM reservations ORDER BY id", nil},
		{"event", model.ReservationFilter{EventID: &eventID}, "FROM reservations WHERE event_id = ? ORDER BY id", []any{3}},
		{"both", model.ReservationFilter{EventID: &eventID, UserID: &userID}, "FROM reservations WHERE event_id = ? AND user_id = ? ORDER BY id", []any{3, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t, "mysql")
			exp := mock.ExpectQuery(regexp.QuoteMeta(tc.query))
			if len(tc.args) > 0 {
				var args []driver.Value
				for _, a := range tc.args {
					args = append(args, a)
				}
				exp = exp.WithArgs(args...)
			}
			exp.WillReturnRows(sqlmock.NewRows(reservationCols).
				AddRow(1, 4, 3, 2, now, now).
				AddRow(2, 4, 3, 1, now, now))

			got, err := NewReservationRepo(db).List(context.Background(), tc.filter)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, uint64(1), got[0].ID)
			assert.Equal(t, 2, got[0].NumberOfTickets)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReservationListEmpty(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectQuery("FROM reservations").WillReturnRows(sqlmock.NewRows(reservationCols))

	got, err := NewReservationRepo(db).List(context.Background(), model.ReservationFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReservationCreateUnknownUser(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(99, 1, 2).
		WillReturnError(&mysql.MySQLError{Number: 1452})

	res := &model.Reservation{UserID: 99, EventID: 1, NumberOfTickets: 2}
	err := NewReservationRepo(db).Create(context.Background(), res)
	assert.ErrorIs(t, err, ErrForeignKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationUpdateTickets(t *testing.T) {
	db, mock := newMock(t, "mysql")
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET number_of_tickets = ?")).
		WithArgs(3, 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = ?")).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(8, 1, 1, 3, now, now))

	res := &model.Reservation{ID: 8, NumberOfTickets: 2}
	require.NoError(t, NewReservationRepo(db).UpdateTickets(context.Background(), res, 3))
	assert.Equal(t, 3, res.NumberOfTickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCountByEvent(t *testing.T) {
	db, mock := newMock(t, "pgx")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservations WHERE event_id = $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := NewReservationRepo(db).CountByEvent(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
