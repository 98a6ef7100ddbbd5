package reporting

import "time"

// Lapse is the requested time-bucket granularity for summarization.
type Lapse string

const (
	LapseNone    Lapse = ""
	LapseYears   Lapse = "years"
	LapseMonths  Lapse = "months"
	LapseWeeks   Lapse = "weeks"
	LapseDays    Lapse = "days"
	LapseHours   Lapse = "hours"
	LapseMinutes Lapse = "minutes"
	LapseSeconds Lapse = "seconds"
)

// Valid reports whether the lapse names a known granularity.
func (l Lapse) Valid() bool {
	switch l {
	case LapseNone, LapseYears, LapseMonths, LapseWeeks, LapseDays,
		LapseHours, LapseMinutes, LapseSeconds:
		return true
	default:
		return false
	}
}

// Bucket is one grouped summary row: the record start truncated to the
// requested lapse, with the computed per-bucket statistics.
type Bucket struct {
	Start time.Time `json:"start"`

	// Records is the matching document count.
	Records int `json:"records"`
	// Average is the arithmetic mean of billsec.
	Average float64 `json:"average"`
	// Duration is the sum of total-seconds.
	Duration int `json:"duration"`
	// Billing is the sum of billsec.
	Billing int `json:"billing"`
	// Seconds is the sum of billable seconds.
	Seconds int `json:"seconds"`
}

// HoursSummary is the legacy hourly contract: two parallel maps keyed
// by the bucket's epoch seconds.
type HoursSummary struct {
	Records map[int64]int `json:"records"`
	Minutes map[int64]int `json:"minutes"`
}

// Totals is the collapsed no-lapse summary.
type Totals struct {
	Records   int `json:"records"`
	Minutes   int `json:"minutes"`
	RecordAvg int `json:"record_avg"`
}
