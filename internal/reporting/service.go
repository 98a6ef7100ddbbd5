package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"mango/internal/accounts"
	"mango/internal/records"
	"mango/internal/timewindow"

	"github.com/samber/lo"
)

var ErrInvalidLapse = errors.New("reporting: unknown lapse")

// Repository is the slice of record storage the aggregation engine
// needs: every record matching a filter, unpaginated. Both record
// repositories satisfy it.
type Repository interface {
	ListAll(ctx context.Context, f records.Filter) ([]records.Record, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Summarize computes grouped counts, durations and averages for the
// scope/window, bucketed by the record start truncated to the lapse.
// An empty result set yields an empty slice, not an error.
func (s *Service) Summarize(ctx context.Context, scope accounts.Scope, window timewindow.Window, lapse Lapse) ([]Bucket, error) {
	// Callers wanting the collapsed no-lapse shape use Totals.
	if lapse == LapseNone || !lapse.Valid() {
		return nil, ErrInvalidLapse
	}

	rows, err := s.matching(ctx, scope, window)
	if err != nil {
		return nil, err
	}

	type acc struct {
		records  int
		duration int
		billing  int
		seconds  int
	}
	groups := make(map[time.Time]*acc)
	for _, r := range rows {
		key := truncate(r.Start, lapse)
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}
		g.records++
		g.duration += r.Duration
		g.billing += r.Billsec
		g.seconds += r.Seconds
	}

	out := make([]Bucket, 0, len(groups))
	for start, g := range groups {
		out = append(out, Bucket{
			Start:    start,
			Records:  g.records,
			Average:  float64(g.billing) / float64(g.records),
			Duration: g.duration,
			Billing:  g.billing,
			Seconds:  g.seconds,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// SummarizeHours reshapes hourly buckets into the legacy contract:
// records and minutes maps keyed by bucket epoch, minutes being
// billsec/60 integer-truncated.
func (s *Service) SummarizeHours(ctx context.Context, scope accounts.Scope, window timewindow.Window) (HoursSummary, error) {
	buckets, err := s.Summarize(ctx, scope, window, LapseHours)
	if err != nil {
		return HoursSummary{}, err
	}
	out := HoursSummary{
		Records: make(map[int64]int, len(buckets)),
		Minutes: make(map[int64]int, len(buckets)),
	}
	for _, b := range buckets {
		epoch := b.Start.Unix()
		out.Records[epoch] = b.Records
		out.Minutes[epoch] = b.Billing / 60
	}
	return out, nil
}

// Totals collapses the window to three scalars. The original contract
// derives record_avg from per-group billsec averages; grouping is by
// the full start instant, so identical starts share one average. A
// zero record count yields all-zero totals rather than dividing by
// zero.
func (s *Service) Totals(ctx context.Context, scope accounts.Scope, window timewindow.Window) (Totals, error) {
	buckets, err := s.Summarize(ctx, scope, window, LapseSeconds)
	if err != nil {
		return Totals{}, err
	}
	if len(buckets) == 0 {
		return Totals{}, nil
	}

	total := lo.SumBy(buckets, func(b Bucket) int { return b.Records })
	if total == 0 {
		return Totals{}, nil
	}
	seconds := lo.SumBy(buckets, func(b Bucket) int { return b.Seconds })
	avgSum := lo.SumBy(buckets, func(b Bucket) float64 { return b.Average })

	minAvg := avgSum / 60
	return Totals{
		Records:   total,
		Minutes:   seconds / 60,
		RecordAvg: int(math.Round(minAvg / float64(total))),
	}, nil
}

func (s *Service) matching(ctx context.Context, scope accounts.Scope, window timewindow.Window) ([]records.Record, error) {
	rows, err := s.repo.ListAll(ctx, records.Filter{
		Scope:     scope,
		Window:    window,
		HasWindow: true,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize list: %w", err)
	}
	return rows, nil
}

// truncate floors t to the start of its lapse bucket. Weeks start on
// Sunday, matching the upstream grouping this replaces.
func truncate(t time.Time, lapse Lapse) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch lapse {
	case LapseYears:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case LapseMonths:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case LapseWeeks:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -int(day.Weekday()))
	case LapseDays:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case LapseHours:
		return t.Truncate(time.Hour)
	case LapseMinutes:
		return t.Truncate(time.Minute)
	default:
		return t.Truncate(time.Second)
	}
}
