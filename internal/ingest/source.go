package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Row is one unchecked upstream call detail row. Fields holds the raw
// document handed to normalization; UniqueID identifies the row in the
// upstream table so it can be flagged after a successful import.
type Row struct {
	UniqueID string
	Fields   map[string]any
}

// Source feeds the ingestion worker from an upstream store.
type Source interface {
	// FetchBatch returns up to limit unchecked rows.
	FetchBatch(ctx context.Context, limit int) ([]Row, error)
	// MarkChecked flags one row so later fetches skip it.
	MarkChecked(ctx context.Context, uniqueid string) error
}

// SQLSource reads unchecked rows from an upstream Postgres CDR table.
//
// Assumed table (telephony-switch layout):
//
//	<table> (uniqueid PK, accountcode, src, dst, channel, start,
//	         duration, billsec, disposition, checked)
type SQLSource struct {
	db    *sql.DB
	table string
}

const defaultSourceTable = "cdr"

func NewSQLSource(db *sql.DB, table string) (*SQLSource, error) {
	if table == "" {
		table = defaultSourceTable
	}
	// The table name is interpolated into SQL; only allow identifiers.
	if strings.ContainsAny(table, ` ;"'`) {
		return nil, fmt.Errorf("invalid source table name %q", table)
	}
	return &SQLSource{db: db, table: table}, nil
}

func (s *SQLSource) FetchBatch(ctx context.Context, limit int) ([]Row, error) {
	q := fmt.Sprintf(`
SELECT uniqueid, accountcode, src, dst, channel, start, duration, billsec, disposition
FROM %s
WHERE checked = FALSE
ORDER BY start ASC
LIMIT $1
`, s.table)

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unchecked rows: %w", err)
	}
	defer rows.Close()

	out := make([]Row, 0, limit)
	for rows.Next() {
		var (
			uniqueid, accountcode string
			src, dst, channel     sql.NullString
			start                 time.Time
			duration, billsec     int
			disposition           sql.NullString
		)
		if err := rows.Scan(&uniqueid, &accountcode, &src, &dst, &channel, &start, &duration, &billsec, &disposition); err != nil {
			return nil, fmt.Errorf("scan upstream row: %w", err)
		}
		out = append(out, Row{
			UniqueID: uniqueid,
			Fields: map[string]any{
				"uniqueid":    uniqueid,
				"account":     accountcode,
				"accountcode": accountcode,
				"source":      src.String,
				"destination": dst.String,
				"channel":     channel.String,
				"start":       start,
				"duration":    duration,
				"billsec":     billsec,
				"status":      strings.ToLower(disposition.String),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("upstream rows: %w", err)
	}
	return out, nil
}

func (s *SQLSource) MarkChecked(ctx context.Context, uniqueid string) error {
	q := fmt.Sprintf(`UPDATE %s SET checked = TRUE WHERE uniqueid = $1`, s.table)
	if _, err := s.db.ExecContext(ctx, q, uniqueid); err != nil {
		return fmt.Errorf("mark row checked: %w", err)
	}
	return nil
}
