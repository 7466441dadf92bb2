package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique constraint hit.
const uniqueViolation = "23505"

// schemaLockID serializes schema setup between instances starting together.
const schemaLockID = 7710421

var schema = []string{
	fmt.Sprintf(`SELECT pg_advisory_xact_lock(%d)`, schemaLockID),
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('PASSENGER', 'DRIVER')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rides (
		id              TEXT PRIMARY KEY,
		pickup_location TEXT NOT NULL,
		drop_location   TEXT NOT NULL,
		user_id         TEXT NOT NULL REFERENCES users (id),
		driver_id       TEXT REFERENCES users (id),
		status          TEXT NOT NULL CHECK (status IN ('REQUESTED', 'ACCEPTED', 'COMPLETED')),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK ((status = 'REQUESTED') = (driver_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS rides_status_idx ON rides (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS rides_user_id_idx ON rides (user_id, created_at)`,
}

// EnsureSchema creates the tables and indexes the repositories rely on.
// Every statement is idempotent, so it is safe to run on each start. Run it
// inside InTx so the advisory lock is held until the schema is committed.
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
