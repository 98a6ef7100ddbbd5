package records

import (
	"context"
	"errors"
	"fmt"

	"mango/internal/accounts"
	"mango/internal/apperr"
	"mango/internal/timewindow"
)

const defaultPageSize = 25

// Service is the record lister and lifecycle front.
//
// Pagination is zero-based throughout: skip = page * pageSize. The
// returned Page.Count is a separate count query over the same filter,
// never len(results).
type Service struct {
	repo     Repository
	pageSize int
}

func NewService(repo Repository, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Service{repo: repo, pageSize: pageSize}
}

// List returns one page of records visible to the given scope inside
// the window. Unassigned records never show up here.
func (s *Service) List(ctx context.Context, scope accounts.Scope, window timewindow.Window, status string, page int) (Page, error) {
	if page < 0 {
		page = 0
	}
	f := Filter{Scope: scope, Window: window, HasWindow: true, Status: status}

	results, err := s.repo.List(ctx, f, page*s.pageSize, s.pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list records: %w", err)
	}
	count, err := s.repo.Count(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("count records: %w", err)
	}
	return Page{Results: results, Page: page, Count: count}, nil
}

// ListUnassigned returns records not yet attributed to any account.
// This is the only listing path that surfaces assigned=false records.
func (s *Service) ListUnassigned(ctx context.Context, page int) (Page, error) {
	if page < 0 {
		page = 0
	}
	f := Filter{Unassigned: true}

	results, err := s.repo.List(ctx, f, page*s.pageSize, s.pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list unassigned records: %w", err)
	}
	count, err := s.repo.Count(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("count unassigned records: %w", err)
	}
	return Page{Results: results, Page: page, Count: count}, nil
}

// Get looks up one record. A non-empty account enforces tenant
// isolation via the (uuid, account) compound filter.
func (s *Service) Get(ctx context.Context, account, recordUUID string) (Record, error) {
	return s.repo.FindByUUID(ctx, recordUUID, account)
}

// Create normalizes and stores a raw record payload. Validation and
// duplicate errors pass through untouched for the boundary to report.
func (s *Service) Create(ctx context.Context, raw map[string]any) (Record, error) {
	rec, err := Normalize(raw)
	if err != nil {
		return Record{}, err
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		var dup *apperr.DuplicateError
		if errors.As(err, &dup) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("store record %s: %w", rec.UUID, err)
	}
	return rec, nil
}

// SetAssigned flags a record as attributed to its account. Flagging an
// already-assigned record is a no-op update, not an error.
func (s *Service) SetAssigned(ctx context.Context, accountcode, recordUUID string) error {
	ok, err := s.repo.SetAssigned(ctx, accountcode, recordUUID)
	if err != nil {
		return fmt.Errorf("assign record %s: %w", recordUUID, err)
	}
	if !ok {
		return apperr.Missing("record", recordUUID)
	}
	return nil
}

// Delete removes a record by uuid.
func (s *Service) Delete(ctx context.Context, recordUUID string) error {
	ok, err := s.repo.Delete(ctx, recordUUID)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", recordUUID, err)
	}
	if !ok {
		return apperr.Missing("record", recordUUID)
	}
	return nil
}

// PageSize exposes the configured page size (HTTP layer reports it).
func (s *Service) PageSize() int { return s.pageSize }
