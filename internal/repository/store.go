package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// Store owns the connection pool and runs units of work in a transaction.
// Repositories created from the same pool pick up the transaction from
// the context passed to them, so a service can compose several repository
// calls atomically without knowing about *sqlx.Tx.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// WithTx runs fn inside a READ COMMITTED transaction.  The transaction is
// committed when fn returns nil and rolled back otherwise.  Nested calls
// reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// conn returns the transaction bound to ctx, or db when there is none.
func conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

func isPostgres(q sqlx.ExtContext) bool {
	switch q.DriverName() {
	case "pgx", "postgres":
		return true
	}
	return false
}

// insertID executes an INSERT written with ? placeholders and returns the
// generated id.  PostgreSQL has no LastInsertId so RETURNING is used there.
func insertID(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (uint64, error) {
	if isPostgres(q) {
		var id uint64
		err := q.QueryRowxContext(ctx, q.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// exec runs a statement written with ? placeholders and returns the number
// of affected rows.
func exec(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// isDuplicateKey reports a unique violation (MySQL 1062, PostgreSQL 23505).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// isForeignKeyViolation reports a foreign key violation (MySQL 1451/1452,
// PostgreSQL 23503).
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1451 || me.Number == 1452
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23503"
	}
	return false
}

// translate maps driver errors to the package sentinels.  notFound is
// returned for sql.ErrNoRows.
func translate(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case isDuplicateKey(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	}
	return err
}
