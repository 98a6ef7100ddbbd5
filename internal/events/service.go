package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for events. It is append-only
// and deduplicates on (account, resource, resource_uuid): Append must
// report whether the event was new.
type Repository interface {
	Append(ctx context.Context, e Event) (bool, error)
	ListByAccount(ctx context.Context, account string) ([]Event, error)
}

var ErrInvalidEvent = errors.New("events: invalid event")

// Service records resource announcements. Announcing the same resource
// twice stores one event.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Append(ctx context.Context, e Event) (bool, error) {
	if s.repo == nil {
		return false, errors.New("events: repository not configured")
	}
	if e.Account == "" || e.Resource == "" || e.ResourceUUID == "" {
		return false, ErrInvalidEvent
	}

	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// AnnounceRecord logs that a record reached the store for an account.
func (s *Service) AnnounceRecord(ctx context.Context, account, recordUUID string) (bool, error) {
	return s.Append(ctx, Event{
		Account:      account,
		Resource:     "records",
		ResourceUUID: recordUUID,
		Message:      fmt.Sprintf("new record %s", recordUUID),
	})
}

// ForAccount returns the stored events for one account, oldest first.
func (s *Service) ForAccount(ctx context.Context, account string) ([]Event, error) {
	if account == "" {
		return nil, ErrInvalidEvent
	}
	return s.repo.ListByAccount(ctx, account)
}
