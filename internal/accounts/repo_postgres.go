package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mango/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo stores accounts and org memberships in Postgres.
//
// Assumed tables:
// - accounts (uuid PK, account UNIQUE, email, type, public, created_at)
// - org_members (org, member, UNIQUE (org, member))
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, a Account) error {
	const q = `
INSERT INTO accounts (uuid, account, email, type, public, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.db.ExecContext(ctx, q, a.UUID, a.Account, a.Email, string(a.Type), a.Public, a.CreatedAt)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			value := a.Account
			if field == "uuid" {
				value = a.UUID
			}
			return apperr.Duplicate("account", field, value)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	for _, m := range a.Members {
		if err := r.AddMember(ctx, a.Account, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepo) FindByUUID(ctx context.Context, uuid string) (Account, error) {
	const q = `
SELECT uuid, account, email, type, public, created_at
FROM accounts
WHERE uuid = $1
`
	return r.scanOne(ctx, q, uuid)
}

func (r *PostgresRepo) FindByName(ctx context.Context, account string) (Account, error) {
	const q = `
SELECT uuid, account, email, type, public, created_at
FROM accounts
WHERE account = $1
`
	return r.scanOne(ctx, q, account)
}

func (r *PostgresRepo) scanOne(ctx context.Context, q, key string) (Account, error) {
	var a Account
	if err := r.db.QueryRowContext(ctx, q, key).Scan(
		&a.UUID,
		&a.Account,
		&a.Email,
		&a.Type,
		&a.Public,
		&a.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, apperr.Missing("account", key)
		}
		return Account{}, fmt.Errorf("find account: %w", err)
	}
	members, err := r.MembersOf(ctx, a.Account)
	if err != nil {
		return Account{}, err
	}
	a.Members = members
	return a, nil
}

func (r *PostgresRepo) MembersOf(ctx context.Context, org string) ([]string, error) {
	const q = `
SELECT member
FROM org_members
WHERE org = $1
ORDER BY member
`
	rows, err := r.db.QueryContext(ctx, q, org)
	if err != nil {
		return nil, fmt.Errorf("query org members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan org member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("org members rows: %w", err)
	}
	return members, nil
}

func (r *PostgresRepo) AddMember(ctx context.Context, org, member string) error {
	const q = `
INSERT INTO org_members (org, member)
VALUES ($1, $2)
ON CONFLICT (org, member) DO NOTHING
`
	if _, err := r.db.ExecContext(ctx, q, org, member); err != nil {
		return fmt.Errorf("add org member: %w", err)
	}
	return nil
}

func (r *PostgresRepo) RemoveMember(ctx context.Context, org, member string) (bool, error) {
	const q = `
DELETE FROM org_members
WHERE org = $1 AND member = $2
`
	res, err := r.db.ExecContext(ctx, q, org, member)
	if err != nil {
		return false, fmt.Errorf("remove org member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove org member affected: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, uuid string) (bool, error) {
	const q = `
DELETE FROM accounts
WHERE uuid = $1
`
	res, err := r.db.ExecContext(ctx, q, uuid)
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete account affected: %w", err)
	}
	return n > 0, nil
}

// uniqueViolation detects a Postgres unique-constraint error and maps
// the violated constraint to the conflicting field name.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	switch pgErr.ConstraintName {
	case "accounts_pkey", "accounts_uuid_key":
		return "uuid", true
	default:
		return "account", true
	}
}
