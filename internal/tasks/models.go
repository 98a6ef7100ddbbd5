package tasks

import "time"

// Task is a tenant-scoped work item. It shares the record collection's
// ownership semantics: assigned=false tasks are orphaned until flagged,
// public=true tasks are visible without tenant scoping.

type Task struct {
	UUID string `json:"uuid" db:"uuid"`

	Account     string `json:"account" db:"account"`
	AccountCode string `json:"accountcode,omitempty" db:"accountcode"`

	Title       string   `json:"title,omitempty" db:"title"`
	Description string   `json:"description,omitempty" db:"description"`
	Payload     string   `json:"payload,omitempty" db:"payload"`
	Assignees   []string `json:"assignees,omitempty" db:"-"`
	Labels      []string `json:"labels,omitempty" db:"-"`

	Source      string `json:"source,omitempty" db:"source"`
	Destination string `json:"destination,omitempty" db:"destination"`

	// Pointer times so unset schedule fields drop out of JSON instead
	// of rendering the zero time.
	Start    *time.Time `json:"start,omitempty" db:"start"`
	Stop     *time.Time `json:"stop,omitempty" db:"stop"`
	Deadline *time.Time `json:"deadline,omitempty" db:"deadline"`

	Status Status `json:"status" db:"status"`

	Public   bool `json:"public" db:"public"`
	Assigned bool `json:"assigned" db:"assigned"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Status string

const (
	StatusNew   Status = "new"
	StatusNow   Status = "now"
	StatusLater Status = "later"
	StatusDone  Status = "done"
)

// StatusAll bypasses status filtering in listings.
const StatusAll = "all"

// ValidStatus reports whether s names a task state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusNow, StatusLater, StatusDone:
		return true
	default:
		return false
	}
}

// Page is one page of task results; Count is the pre-pagination total.
type Page struct {
	Results []Task `json:"results"`
	Page    int    `json:"page"`
	Count   int    `json:"count"`
}
