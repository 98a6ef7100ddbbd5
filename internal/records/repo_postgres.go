package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mango/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo stores records in Postgres, one row per document keyed
// by uuid.
//
// Assumed table:
//
//	records (uuid PK, uniqueid UNIQUE, account, accountcode, source,
//	         destination, channel, start, duration, billsec, seconds,
//	         status, public, assigned)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const recordColumns = `uuid, uniqueid, account, accountcode, source, destination, channel, start, duration, billsec, seconds, status, public, assigned`

func (r *PostgresRepo) Insert(ctx context.Context, rec Record) error {
	const q = `
INSERT INTO records (` + recordColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`
	_, err := r.db.ExecContext(ctx, q,
		rec.UUID, nullable(rec.UniqueID), rec.Account, rec.AccountCode,
		rec.Source, rec.Destination, rec.Channel, rec.Start,
		rec.Duration, rec.Billsec, rec.Seconds, rec.Status,
		rec.Public, rec.Assigned,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "uniqueid") {
				return apperr.Duplicate("record", "uniqueid", rec.UniqueID)
			}
			return apperr.Duplicate("record", "uuid", rec.UUID)
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *PostgresRepo) FindByUUID(ctx context.Context, uuid, account string) (Record, error) {
	q := `SELECT ` + recordColumns + ` FROM records WHERE uuid = $1`
	args := []any{uuid}
	if account != "" {
		q += ` AND account = $2`
		args = append(args, account)
	}
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, apperr.Missing("record", uuid)
		}
		return Record{}, fmt.Errorf("find record: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepo) List(ctx context.Context, f Filter, skip, limit int) ([]Record, error) {
	where, args := buildWhere(f)
	// uuid DESC is the legacy recency proxy; see the lister contract.
	q := fmt.Sprintf(`SELECT %s FROM records %s ORDER BY uuid DESC OFFSET $%d LIMIT $%d`,
		recordColumns, where, len(args)+1, len(args)+2)
	args = append(args, skip, limit)
	return r.queryRecords(ctx, q, args)
}

func (r *PostgresRepo) ListAll(ctx context.Context, f Filter) ([]Record, error) {
	where, args := buildWhere(f)
	q := fmt.Sprintf(`SELECT %s FROM records %s ORDER BY uuid DESC`, recordColumns, where)
	return r.queryRecords(ctx, q, args)
}

func (r *PostgresRepo) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildWhere(f)
	q := `SELECT COUNT(*) FROM records ` + where
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func (r *PostgresRepo) SetAssigned(ctx context.Context, accountcode, uuid string) (bool, error) {
	const q = `
UPDATE records
SET assigned = TRUE
WHERE uuid = $1 AND accountcode = $2
`
	res, err := r.db.ExecContext(ctx, q, uuid, accountcode)
	if err != nil {
		return false, fmt.Errorf("set assigned flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set assigned affected: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, uuid string) (bool, error) {
	const q = `DELETE FROM records WHERE uuid = $1`
	res, err := r.db.ExecContext(ctx, q, uuid)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record affected: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepo) queryRecords(ctx context.Context, q string, args []any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records rows: %w", err)
	}
	return out, nil
}

// buildWhere renders Filter semantics as a WHERE clause. The in-memory
// repository applies the same rules in Filter.matches.
func buildWhere(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func() int { return len(args) + 1 }

	if f.Unassigned {
		return "WHERE assigned = FALSE", nil
	}

	if f.HasWindow {
		conds = append(conds, fmt.Sprintf("start >= $%d AND start < $%d", next(), next()+1))
		args = append(args, f.Window.Start, f.Window.End)
	}
	if f.Status != "" && f.Status != StatusAll {
		conds = append(conds, fmt.Sprintf("status = $%d", next()))
		args = append(args, f.Status)
	}
	if f.Scope.Global() {
		conds = append(conds, "public = TRUE")
	} else {
		conds = append(conds, "assigned = TRUE")
		holes := make([]string, len(f.Scope.Accounts))
		for i, a := range f.Scope.Accounts {
			holes[i] = fmt.Sprintf("$%d", next())
			args = append(args, a)
		}
		conds = append(conds, "accountcode IN ("+strings.Join(holes, ", ")+")")
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec      Record
		uniqueID sql.NullString
	)
	if err := row.Scan(
		&rec.UUID, &uniqueID, &rec.Account, &rec.AccountCode,
		&rec.Source, &rec.Destination, &rec.Channel, &rec.Start,
		&rec.Duration, &rec.Billsec, &rec.Seconds, &rec.Status,
		&rec.Public, &rec.Assigned,
	); err != nil {
		return Record{}, err
	}
	rec.UniqueID = uniqueID.String
	rec.Start = rec.Start.UTC()
	return rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
