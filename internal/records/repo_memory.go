package records

import (
	"context"
	"sort"
	"sync"

	"mango/internal/apperr"
)

// MemoryRepo is an in-memory record collection for tests and early
// development. It enforces the same uniqueness rules and sort order as
// the SQL repository.
type MemoryRepo struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.records {
		if got.UUID == rec.UUID {
			return apperr.Duplicate("record", "uuid", rec.UUID)
		}
		if rec.UniqueID != "" && got.UniqueID == rec.UniqueID {
			return apperr.Duplicate("record", "uniqueid", rec.UniqueID)
		}
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *MemoryRepo) FindByUUID(ctx context.Context, uuid, account string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.UUID != uuid {
			continue
		}
		if account != "" && rec.Account != account {
			continue
		}
		return rec, nil
	}
	return Record{}, apperr.Missing("record", uuid)
}

func (r *MemoryRepo) List(ctx context.Context, f Filter, skip, limit int) ([]Record, error) {
	matched := r.sortedMatches(f)
	if skip >= len(matched) {
		return []Record{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryRepo) ListAll(ctx context.Context, f Filter) ([]Record, error) {
	return r.sortedMatches(f), nil
}

func (r *MemoryRepo) Count(ctx context.Context, f Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if f.matches(rec) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) SetAssigned(ctx context.Context, accountcode, uuid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].UUID == uuid && r.records[i].AccountCode == accountcode {
			r.records[i].Assigned = true
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, uuid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.UUID == uuid {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// sortedMatches snapshots matching records sorted by uuid descending,
// mirroring the SQL repository's ORDER BY uuid DESC.
func (r *MemoryRepo) sortedMatches(f Filter) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID > out[j].UUID })
	return out
}
