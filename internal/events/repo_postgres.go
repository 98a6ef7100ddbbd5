package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo stores events in Postgres.
//
// Assumed table:
//
//	events (uuid PK, account, resource, resource_uuid, message,
//	        created_at, UNIQUE (account, resource, resource_uuid))
//
// The unique constraint carries the dedup semantic; a duplicate insert
// is reported as not-new rather than as an error.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) (bool, error) {
	const q = `
INSERT INTO events (uuid, account, resource, resource_uuid, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.db.ExecContext(ctx, q,
		e.UUID, e.Account, e.Resource, e.ResourceUUID, e.Message, e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		return false, fmt.Errorf("insert event: %w", err)
	}
	return true, nil
}

func (r *PostgresRepo) ListByAccount(ctx context.Context, account string) ([]Event, error) {
	const q = `
SELECT uuid, account, resource, resource_uuid, message, created_at
FROM events
WHERE account = $1
ORDER BY created_at ASC
`
	rows, err := r.db.QueryContext(ctx, q, account)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.UUID, &e.Account, &e.Resource, &e.ResourceUUID, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("events rows: %w", err)
	}
	return out, nil
}
