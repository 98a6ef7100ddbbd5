package records

import "time"

// Record is one call detail record (CDR).
//
// Invariants:
// - uuid is unique across the collection, generated once, immutable.
// - duration >= billsec always.
// - assigned=false records are excluded from account-scoped listings
//   and summaries until flagged.
//
// The JSON representation is sparse: optional fields that were absent
// from the source payload are omitted rather than defaulted.

type Record struct {
	UUID string `json:"uuid" db:"uuid"`

	// UniqueID correlates the record with its row in the upstream
	// relational source; used by ingestion to flag checked rows.
	UniqueID string `json:"uniqueid,omitempty" db:"uniqueid"`

	// Account is the owning tenant name; AccountCode is the raw tenant
	// identifier carried by the upstream CDR (defaults to Account).
	Account     string `json:"account" db:"account"`
	AccountCode string `json:"accountcode,omitempty" db:"accountcode"`

	Source      string `json:"source,omitempty" db:"source"`
	Destination string `json:"destination,omitempty" db:"destination"`
	Channel     string `json:"channel,omitempty" db:"channel"`

	// Start is the event start instant (UTC, second precision).
	Start time.Time `json:"start" db:"start"`

	// Duration is total seconds; Billsec and Seconds are billable
	// seconds (Seconds mirrors Billsec when the source omits it).
	Duration int `json:"duration" db:"duration"`
	Billsec  int `json:"billsec" db:"billsec"`
	Seconds  int `json:"seconds" db:"seconds"`

	Status string `json:"status,omitempty" db:"status"`

	Public   bool `json:"public" db:"public"`
	Assigned bool `json:"assigned" db:"assigned"`
}

// Page is one page of listing results. Count is the total matching
// documents before pagination, independent of the page number.
type Page struct {
	Results []Record `json:"results"`
	Page    int      `json:"page"`
	Count   int      `json:"count"`
}

// StatusAll bypasses status filtering in listings.
const StatusAll = "all"
