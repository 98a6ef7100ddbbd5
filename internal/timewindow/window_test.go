package timewindow

import (
	"errors"
	"testing"
	"time"
)

func TestResolve_DefaultsToCurrentUTCDay(t *testing.T) {
	now := time.Date(2023, 11, 14, 17, 42, 9, 0, time.UTC)
	w, err := resolveAt("", "", now)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	wantStart := time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", w.Start, wantStart)
	}
	if w.Seconds() != 86400 {
		t.Fatalf("window length = %d seconds, want 86400", w.Seconds())
	}
}

func TestResolve_EndDefaultsToStartPlusDay(t *testing.T) {
	w, err := Resolve("2023-11-14", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := w.End.Sub(w.Start); got != 24*time.Hour {
		t.Fatalf("end-start = %v, want 24h", got)
	}
}

func TestResolve_AcceptedFormats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"1700000000", time.Unix(1700000000, 0).UTC()},
		{"2023-11-14", time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)},
		{"2023-11-14 10:30:00", time.Date(2023, 11, 14, 10, 30, 0, 0, time.UTC)},
		{"2023-11-14T10:30:00", time.Date(2023, 11, 14, 10, 30, 0, 0, time.UTC)},
		{"2023-11-14T10:30:00Z", time.Date(2023, 11, 14, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestResolve_MalformedInput(t *testing.T) {
	_, err := Resolve("not-a-date", "")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestResolve_RejectsInvertedRange(t *testing.T) {
	_, err := Resolve("2023-11-15", "2023-11-14")
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	_, err = Resolve("2023-11-14", "2023-11-14")
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for empty interval, got %v", err)
	}
}

func TestWindow_EpochMatchesCalendar(t *testing.T) {
	w, err := Resolve("2023-11-14", "2023-11-15")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	s, e := w.Epoch()
	if s != w.Start.Unix() || e != w.End.Unix() {
		t.Fatalf("epoch boundaries diverge from calendar boundaries")
	}
}

func TestWindow_ContainsHalfOpen(t *testing.T) {
	w, _ := Resolve("2023-11-14", "2023-11-15")
	if !w.Contains(w.Start) {
		t.Fatalf("start must be inside the interval")
	}
	if w.Contains(w.End) {
		t.Fatalf("end must be outside the interval")
	}
}
