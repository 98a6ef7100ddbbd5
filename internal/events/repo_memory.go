package events

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory append-only repository for tests and
// single-process runs.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
	seen   map[string]struct{}
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{seen: make(map[string]struct{})}
}

func dedupKey(e Event) string {
	return e.Account + "\x00" + e.Resource + "\x00" + e.ResourceUUID
}

func (r *MemoryRepo) Append(ctx context.Context, e Event) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dedupKey(e)
	if _, ok := r.seen[key]; ok {
		return false, nil
	}
	r.seen[key] = struct{}{}
	r.events = append(r.events, e)
	return true, nil
}

func (r *MemoryRepo) ListByAccount(ctx context.Context, account string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0)
	for _, e := range r.events {
		if e.Account == account {
			out = append(out, e)
		}
	}
	return out, nil
}
