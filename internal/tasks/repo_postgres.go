package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mango/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo stores tasks in Postgres, one row per document keyed by
// uuid. Assignees and labels are kept as JSON arrays in text columns.
//
// Assumed table:
//
//	tasks (uuid PK, account, accountcode, title, description, payload,
//	       assignees, labels, source, destination, start, stop,
//	       deadline, status, public, assigned, created_at)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const taskColumns = `uuid, account, accountcode, title, description, payload, assignees, labels, source, destination, start, stop, deadline, status, public, assigned, created_at`

func (r *PostgresRepo) Insert(ctx context.Context, t Task) error {
	const q = `
INSERT INTO tasks (` + taskColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`
	assignees, err := json.Marshal(t.Assignees)
	if err != nil {
		return fmt.Errorf("encode assignees: %w", err)
	}
	labels, err := json.Marshal(t.Labels)
	if err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		t.UUID, t.Account, t.AccountCode, t.Title, t.Description, t.Payload,
		string(assignees), string(labels), t.Source, t.Destination,
		t.Start, t.Stop, t.Deadline, string(t.Status), t.Public, t.Assigned,
		t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Duplicate("task", "uuid", t.UUID)
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *PostgresRepo) FindByUUID(ctx context.Context, uuid, account string) (Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE uuid = $1`
	args := []any{uuid}
	if account != "" {
		q += ` AND account = $2`
		args = append(args, account)
	}
	t, err := scanTask(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, apperr.Missing("task", uuid)
		}
		return Task{}, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (r *PostgresRepo) List(ctx context.Context, f Filter, skip, limit int) ([]Task, error) {
	where, args := buildWhere(f)
	q := fmt.Sprintf(`SELECT %s FROM tasks %s ORDER BY uuid DESC OFFSET $%d LIMIT $%d`,
		taskColumns, where, len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tasks rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildWhere(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *PostgresRepo) Update(ctx context.Context, account, uuid string, p Patch) (bool, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Payload != nil {
		add("payload", *p.Payload)
	}
	if p.Assignees != nil {
		b, err := json.Marshal(*p.Assignees)
		if err != nil {
			return false, fmt.Errorf("encode assignees: %w", err)
		}
		add("assignees", string(b))
	}
	if p.Labels != nil {
		b, err := json.Marshal(*p.Labels)
		if err != nil {
			return false, fmt.Errorf("encode labels: %w", err)
		}
		add("labels", string(b))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.Public != nil {
		add("public", *p.Public)
	}
	if len(sets) == 0 {
		return false, nil
	}

	args = append(args, uuid, account)
	q := fmt.Sprintf(`UPDATE tasks SET %s WHERE uuid = $%d AND account = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update task affected: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepo) SetAssigned(ctx context.Context, accountcode, uuid string) (bool, error) {
	const q = `
UPDATE tasks
SET assigned = TRUE
WHERE uuid = $1 AND accountcode = $2
`
	res, err := r.db.ExecContext(ctx, q, uuid, accountcode)
	if err != nil {
		return false, fmt.Errorf("set task assigned: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set task assigned affected: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, uuid string) (bool, error) {
	const q = `DELETE FROM tasks WHERE uuid = $1`
	res, err := r.db.ExecContext(ctx, q, uuid)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task affected: %w", err)
	}
	return n > 0, nil
}

func buildWhere(f Filter) (string, []any) {
	if f.Unassigned {
		return "WHERE assigned = FALSE", nil
	}
	var (
		conds []string
		args  []any
	)
	if f.Status != "" && f.Status != StatusAll {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Scope.Global() {
		conds = append(conds, "public = TRUE")
	} else {
		conds = append(conds, "assigned = TRUE")
		holes := make([]string, len(f.Scope.Accounts))
		for i, a := range f.Scope.Accounts {
			args = append(args, a)
			holes[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, "accountcode IN ("+strings.Join(holes, ", ")+")")
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t                 Task
		assignees, labels string
	)
	if err := row.Scan(
		&t.UUID, &t.Account, &t.AccountCode, &t.Title, &t.Description,
		&t.Payload, &assignees, &labels, &t.Source, &t.Destination,
		&t.Start, &t.Stop, &t.Deadline, &t.Status, &t.Public, &t.Assigned,
		&t.CreatedAt,
	); err != nil {
		return Task{}, err
	}
	if assignees != "" {
		if err := json.Unmarshal([]byte(assignees), &t.Assignees); err != nil {
			return Task{}, fmt.Errorf("decode assignees: %w", err)
		}
	}
	if labels != "" {
		if err := json.Unmarshal([]byte(labels), &t.Labels); err != nil {
			return Task{}, fmt.Errorf("decode labels: %w", err)
		}
	}
	return t, nil
}
