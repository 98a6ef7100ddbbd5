package events

import "time"

// Event is an append-only notification that a resource appeared in the
// system, e.g. a record landing through the ingestion worker.
//
// Invariants:
// - Events are never updated or deleted.
// - At most one event exists per (account, resource, resource_uuid);
//   re-announcing an already-seen resource is a no-op.
// - Event logging is best-effort; callers must not fail the operation
//   that produced the resource when the event cannot be stored.

type Event struct {
	UUID    string `json:"uuid" db:"uuid"`
	Account string `json:"account" db:"account"`

	// Resource names the collection the event refers to, e.g. "records".
	Resource     string `json:"resource" db:"resource"`
	ResourceUUID string `json:"resource_uuid" db:"resource_uuid"`

	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
