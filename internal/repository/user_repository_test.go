package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
)

var userCols = []string{"id", "name", "email", "password_hash", "email_verified_at", "created_at", "updated_at"}

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock := newMock(t, "mysql")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Ada", "ada@example.com", "hash", &now).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(9, "Ada", "ada@example.com", "hash", now, now, now))

	u := &model.User{Name: "Ada", Email: "  Ada@Example.COM ", PasswordHash: "hash", EmailVerifiedAt: &now}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	assert.Equal(t, uint64(9), u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	require.NotNil(t, u.EmailVerifiedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepo(db).Create(context.Background(), &model.User{Name: "Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserGetByEmail(t *testing.T) {
	db, mock := newMock(t, "pgx")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "Ada", "ada@example.com", "hash", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	repo := NewUserRepo(db)
	u, err := repo.GetByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), u.ID)
	assert.Nil(t, u.EmailVerifiedAt)

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
