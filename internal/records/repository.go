package records

import (
	"context"

	"mango/internal/accounts"
	"mango/internal/timewindow"
)

// Filter selects records for listing, counting and summarization.
//
// Semantics:
//   - Unassigned: only assigned=false rows, no other filters apply.
//   - Global scope: only public=true rows inside the window.
//   - Tenant scope: assigned=true rows whose accountcode matches any
//     scoped account (OR filter, each row matches once) inside the
//     window.
//   - Status other than "" / "all" restricts to rows with that status.
type Filter struct {
	Scope  accounts.Scope
	Window timewindow.Window

	// HasWindow is false for paths that list without a time filter
	// (unassigned listing).
	HasWindow bool

	Status     string
	Unassigned bool
}

// matches applies Filter semantics to a single record. Shared by the
// in-memory repository; the SQL repository expresses the same rules as
// a WHERE clause.
func (f Filter) matches(r Record) bool {
	if f.Unassigned {
		return !r.Assigned
	}
	if f.HasWindow && !f.Window.Contains(r.Start) {
		return false
	}
	if f.Status != "" && f.Status != StatusAll && r.Status != f.Status {
		return false
	}
	if f.Scope.Global() {
		return r.Public
	}
	return r.Assigned && f.Scope.Matches(r.AccountCode)
}

// Repository abstracts the record document collection.
type Repository interface {
	// Insert stores a normalized record. A uuid or uniqueid conflict
	// is reported through apperr.DuplicateError.
	Insert(ctx context.Context, r Record) error

	// FindByUUID looks a record up by uuid; a non-empty account adds
	// the tenant-isolation compound filter (uuid, account).
	FindByUUID(ctx context.Context, uuid, account string) (Record, error)

	// List returns one page of matching records sorted by uuid
	// descending.
	List(ctx context.Context, f Filter, skip, limit int) ([]Record, error)

	// ListAll returns every matching record, unpaginated. Used by the
	// aggregation engine.
	ListAll(ctx context.Context, f Filter) ([]Record, error)

	// Count returns the total matching count before pagination.
	Count(ctx context.Context, f Filter) (int, error)

	// SetAssigned flags the (accountcode, uuid) record as assigned.
	SetAssigned(ctx context.Context, accountcode, uuid string) (bool, error)

	Delete(ctx context.Context, uuid string) (bool, error)
}
