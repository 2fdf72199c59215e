// Package testutil connects integration tests to a real database.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
)

const lockName = "event_ticket_reservation_tests"

// NewTestDB opens TEST_DATABASE_URL with TEST_DATABASE_DRIVER ("pgx" by
// default, or "mysql"), applies the schema from db/ and empties every
// table.  The test is skipped when the variable is unset or the server
// cannot be reached.  Test packages are serialized with an advisory lock.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration tests")
	}
	driver := os.Getenv("TEST_DATABASE_DRIVER")
	if driver == "" {
		driver = "pgx"
	}
	if driver == "mysql" {
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			t.Fatalf("parse mysql dsn: %v", err)
		}
		mc.ParseTime = true
		mc.ClientFoundRows = true
		mc.Loc = time.UTC
		dsn = mc.FormatDSN()
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		t.Fatalf("open %s: %v", driver, err)
	}
	db.SetMaxOpenConns(16)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("skipping database integration tests: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	lock(t, db)
	applySchema(t, db)
	Truncate(t, db)
	return db
}

// Truncate deletes every row and resets id sequences where supported.
func Truncate(t *testing.T, db *sqlx.DB) {
	t.Helper()
	ctx := context.Background()
	if db.DriverName() == "mysql" {
		for _, table := range []string{"access_tokens", "reservations", "events", "users"} {
			if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				t.Fatalf("truncate %s: %v", table, err)
			}
		}
		return
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE access_tokens, reservations, events, users RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func applySchema(t *testing.T, db *sqlx.DB) {
	t.Helper()
	name := "schema.postgres.sql"
	if db.DriverName() == "mysql" {
		name = "schema.mysql.sql"
	}
	_, file, _, _ := runtime.Caller(0)
	raw, err := os.ReadFile(filepath.Join(filepath.Dir(file), "..", "..", "db", name))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	for _, stmt := range strings.Split(string(raw), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}
}

func lock(t *testing.T, db *sqlx.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	conn, err := db.Connx(ctx)
	if err != nil {
		t.Fatalf("acquire lock conn: %v", err)
	}
	acquire, release := "SELECT pg_advisory_lock(hashtext($1))", "SELECT pg_advisory_unlock(hashtext($1))"
	if db.DriverName() == "mysql" {
		acquire, release = "SELECT GET_LOCK(?, 60)", "SELECT RELEASE_LOCK(?)"
	}
	if _, err := conn.ExecContext(ctx, acquire, lockName); err != nil {
		_ = conn.Close()
		t.Fatalf("acquire test lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), release, lockName)
		_ = conn.Close()
	})
}
