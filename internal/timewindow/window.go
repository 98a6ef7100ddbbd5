package timewindow

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidFormat indicates a start/end value that could not be parsed.
	ErrInvalidFormat = errors.New("timewindow: invalid time format")
	// ErrInvalidRange indicates start >= end after resolution.
	ErrInvalidRange = errors.New("timewindow: start must be before end")
)

// Window is a half-open UTC interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Epoch returns the window boundaries as epoch seconds. Both variants
// (epoch and calendar) refer to the same wall-clock instants; only the
// representation differs.
func (w Window) Epoch() (int64, int64) {
	return w.Start.Unix(), w.End.Unix()
}

// Contains reports whether t falls inside the half-open interval.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Seconds is the window length in whole seconds.
func (w Window) Seconds() int64 {
	return int64(w.End.Sub(w.Start) / time.Second)
}

// layouts accepted for start/end query values, tried in order.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Resolve normalizes optional start/end inputs into a concrete window.
// An absent start defaults to the beginning of the current UTC day; an
// absent end defaults to start + 24h.
func Resolve(start, end string) (Window, error) {
	return resolveAt(start, end, time.Now().UTC())
}

func resolveAt(start, end string, now time.Time) (Window, error) {
	var w Window

	if strings.TrimSpace(start) == "" {
		y, m, d := now.Date()
		w.Start = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	} else {
		t, err := Parse(start)
		if err != nil {
			return Window{}, err
		}
		w.Start = t
	}

	if strings.TrimSpace(end) == "" {
		w.End = w.Start.Add(24 * time.Hour)
	} else {
		t, err := Parse(end)
		if err != nil {
			return Window{}, err
		}
		w.End = t
	}

	if !w.Start.Before(w.End) {
		return Window{}, ErrInvalidRange
	}
	return w, nil
}

// Parse accepts epoch seconds or one of the calendar layouts and
// returns the instant in UTC.
func Parse(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, ErrInvalidFormat
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidFormat
}
