package tasks

import (
	"context"

	"mango/internal/accounts"
)

// Filter selects tasks for listing and counting. Task listings carry
// no time filter; scoping and status are the only dimensions.
type Filter struct {
	Scope      accounts.Scope
	Status     string
	Unassigned bool
}

func (f Filter) matches(t Task) bool {
	if f.Unassigned {
		return !t.Assigned
	}
	if f.Status != "" && f.Status != StatusAll && string(t.Status) != f.Status {
		return false
	}
	if f.Scope.Global() {
		return t.Public
	}
	return t.Assigned && f.Scope.Matches(t.AccountCode)
}

// Patch is the whitelisted set of fields a modify may touch. Nil
// pointers leave the stored value unchanged; PATCH cannot invent
// fields outside the schema.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Payload     *string   `json:"payload,omitempty"`
	Assignees   *[]string `json:"assignees,omitempty"`
	Labels      *[]string `json:"labels,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Public      *bool     `json:"public,omitempty"`
}

type Repository interface {
	Insert(ctx context.Context, t Task) error
	FindByUUID(ctx context.Context, uuid, account string) (Task, error)
	List(ctx context.Context, f Filter, skip, limit int) ([]Task, error)
	Count(ctx context.Context, f Filter) (int, error)
	Update(ctx context.Context, account, uuid string, p Patch) (bool, error)
	SetAssigned(ctx context.Context, accountcode, uuid string) (bool, error)
	Delete(ctx context.Context, uuid string) (bool, error)
}
