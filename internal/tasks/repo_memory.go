package tasks

import (
	"context"
	"sort"
	"sync"

	"mango/internal/apperr"
)

// MemoryRepo is an in-memory task collection for tests and early
// development.
type MemoryRepo struct {
	mu    sync.Mutex
	tasks []Task
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(ctx context.Context, t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.tasks {
		if got.UUID == t.UUID {
			return apperr.Duplicate("task", "uuid", t.UUID)
		}
	}
	r.tasks = append(r.tasks, t)
	return nil
}

func (r *MemoryRepo) FindByUUID(ctx context.Context, uuid, account string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.UUID != uuid {
			continue
		}
		if account != "" && t.Account != account {
			continue
		}
		return t, nil
	}
	return Task{}, apperr.Missing("task", uuid)
}

func (r *MemoryRepo) List(ctx context.Context, f Filter, skip, limit int) ([]Task, error) {
	r.mu.Lock()
	matched := make([]Task, 0)
	for _, t := range r.tasks {
		if f.matches(t) {
			matched = append(matched, t)
		}
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].UUID > matched[j].UUID })
	if skip >= len(matched) {
		return []Task{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryRepo) Count(ctx context.Context, f Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if f.matches(t) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) Update(ctx context.Context, account, uuid string, p Patch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].UUID != uuid || r.tasks[i].Account != account {
			continue
		}
		t := &r.tasks[i]
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.Payload != nil {
			t.Payload = *p.Payload
		}
		if p.Assignees != nil {
			t.Assignees = append([]string(nil), (*p.Assignees)...)
		}
		if p.Labels != nil {
			t.Labels = append([]string(nil), (*p.Labels)...)
		}
		if p.Status != nil {
			t.Status = *p.Status
		}
		if p.Public != nil {
			t.Public = *p.Public
		}
		return true, nil
	}
	return false, nil
}

func (r *MemoryRepo) SetAssigned(ctx context.Context, accountcode, uuid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].UUID == uuid && r.tasks[i].AccountCode == accountcode {
			r.tasks[i].Assigned = true
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, uuid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.UUID == uuid {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
