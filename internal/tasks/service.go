package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mango/internal/accounts"
	"mango/internal/apperr"

	"github.com/google/uuid"
)

const defaultPageSize = 25

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

// List returns one page of tasks visible to the scope. status "all"
// bypasses the status filter; any other value restricts to that state.
func (s *Service) List(ctx context.Context, scope accounts.Scope, status string, page int) (Page, error) {
	if page < 0 {
		page = 0
	}
	if status == "" {
		status = StatusAll
	}
	f := Filter{Scope: scope, Status: status}

	results, err := s.repo.List(ctx, f, page*s.pageSize, s.pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list tasks: %w", err)
	}
	count, err := s.repo.Count(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("count tasks: %w", err)
	}
	return Page{Results: results, Page: page, Count: count}, nil
}

// ListUnassigned returns tasks not yet attributed to any account.
func (s *Service) ListUnassigned(ctx context.Context, page int) (Page, error) {
	if page < 0 {
		page = 0
	}
	f := Filter{Unassigned: true}

	results, err := s.repo.List(ctx, f, page*s.pageSize, s.pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list unassigned tasks: %w", err)
	}
	count, err := s.repo.Count(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("count unassigned tasks: %w", err)
	}
	return Page{Results: results, Page: page, Count: count}, nil
}

func (s *Service) Get(ctx context.Context, account, taskUUID string) (Task, error) {
	return s.repo.FindByUUID(ctx, taskUUID, account)
}

// Create validates and stores a new task. Status defaults to "new".
func (s *Service) Create(ctx context.Context, t Task) (Task, error) {
	t.Account = strings.TrimSpace(t.Account)
	if t.Account == "" {
		return Task{}, apperr.Invalid("account", apperr.ReasonMissing)
	}
	if t.AccountCode == "" {
		t.AccountCode = t.Account
	}
	if t.Status == "" {
		t.Status = StatusNew
	}
	if !ValidStatus(t.Status) {
		return Task{}, apperr.Invalid("status", apperr.ReasonMalformed)
	}
	if t.UUID == "" {
		t.UUID = uuid.NewString()
	} else if _, err := uuid.Parse(t.UUID); err != nil {
		return Task{}, apperr.Invalid("uuid", apperr.ReasonMalformed)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, t); err != nil {
		var dup *apperr.DuplicateError
		if errors.As(err, &dup) {
			return Task{}, err
		}
		return Task{}, fmt.Errorf("store task %s: %w", t.UUID, err)
	}
	return t, nil
}

// Modify applies a whitelisted patch to a task owned by account.
func (s *Service) Modify(ctx context.Context, account, taskUUID string, p Patch) error {
	if p.Status != nil && !ValidStatus(*p.Status) {
		return apperr.Invalid("status", apperr.ReasonMalformed)
	}
	ok, err := s.repo.Update(ctx, account, taskUUID, p)
	if err != nil {
		return fmt.Errorf("modify task %s: %w", taskUUID, err)
	}
	if !ok {
		return apperr.Missing("task", taskUUID)
	}
	return nil
}

// SetAssigned flags a task as attributed to its account.
func (s *Service) SetAssigned(ctx context.Context, accountcode, taskUUID string) error {
	ok, err := s.repo.SetAssigned(ctx, accountcode, taskUUID)
	if err != nil {
		return fmt.Errorf("assign task %s: %w", taskUUID, err)
	}
	if !ok {
		return apperr.Missing("task", taskUUID)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, taskUUID string) error {
	ok, err := s.repo.Delete(ctx, taskUUID)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", taskUUID, err)
	}
	if !ok {
		return apperr.Missing("task", taskUUID)
	}
	return nil
}
