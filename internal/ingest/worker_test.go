package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"mango/internal/accounts"
	"mango/internal/events"
	"mango/internal/records"
	"mango/internal/timewindow"
)

type fakeSource struct {
	mu      sync.Mutex
	rows    []Row
	checked map[string]bool
	fetches int
	fetchEr error

	// blockFetch, when non-nil, is closed by the test to let a fetch
	// in progress return.
	blockFetch chan struct{}
}

func newFakeSource(rows ...Row) *fakeSource {
	return &fakeSource{rows: rows, checked: make(map[string]bool)}
}

func (s *fakeSource) FetchBatch(ctx context.Context, limit int) ([]Row, error) {
	s.mu.Lock()
	s.fetches++
	block := s.blockFetch
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if s.fetchEr != nil {
		return nil, s.fetchEr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, 0, limit)
	for _, r := range s.rows {
		if len(out) == limit {
			break
		}
		if !s.checked[r.UniqueID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeSource) MarkChecked(ctx context.Context, uniqueid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked[uniqueid] = true
	return nil
}

func (s *fakeSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func upstreamRow(uniqueid, account string, billsec int) Row {
	return Row{
		UniqueID: uniqueid,
		Fields: map[string]any{
			"uniqueid": uniqueid,
			"account":  account,
			"start":    time.Date(2017, 5, 1, 10, 0, 0, 0, time.UTC),
			"duration": billsec,
			"billsec":  billsec,
			"status":   "answered",
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWorker(src Source) (*Worker, *records.Service, *events.MemoryRepo) {
	w, recSvc, evRepo, _ := newTestWorkerWithAccounts(src)
	return w, recSvc, evRepo
}

func newTestWorkerWithAccounts(src Source) (*Worker, *records.Service, *events.MemoryRepo, *accounts.Service) {
	recSvc := records.NewService(records.NewMemoryRepo(), 0)
	evRepo := events.NewMemoryRepo()
	dir := accounts.NewService(accounts.NewMemoryRepo())
	w := NewWorker(src, recSvc, events.NewService(evRepo), dir, nil, testLogger(), Config{})
	return w, recSvc, evRepo, dir
}

func TestCycleImportsAndFlags(t *testing.T) {
	src := newFakeSource(
		upstreamRow("up-1", "acme", 60),
		upstreamRow("up-2", "acme", 120),
	)
	w, recSvc, evRepo := newTestWorker(src)
	ctx := context.Background()

	if err := w.Cycle(ctx); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	page, err := recSvc.ListUnassigned(ctx, 0)
	if err != nil {
		t.Fatalf("ListUnassigned: %v", err)
	}
	if page.Count != 2 {
		t.Fatalf("imported %d records, want 2", page.Count)
	}
	for _, id := range []string{"up-1", "up-2"} {
		if !src.checked[id] {
			t.Errorf("row %s not flagged checked", id)
		}
	}

	evs, err := evRepo.ListByAccount(ctx, "acme")
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(evs) != 2 {
		t.Errorf("announced %d events, want 2", len(evs))
	}

	// Everything is flagged; the next cycle imports nothing new.
	if err := w.Cycle(ctx); err != nil {
		t.Fatalf("second Cycle: %v", err)
	}
	page, err = recSvc.ListUnassigned(ctx, 0)
	if err != nil {
		t.Fatalf("ListUnassigned: %v", err)
	}
	if page.Count != 2 {
		t.Fatalf("count after second cycle = %d, want 2", page.Count)
	}
}

func TestCycleEmptyFetchIsNoop(t *testing.T) {
	src := newFakeSource()
	w, _, _ := newTestWorker(src)

	if err := w.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if src.fetchCount() != 1 {
		t.Fatalf("fetches = %d, want 1", src.fetchCount())
	}
}

func TestCycleRowFailureIsIsolated(t *testing.T) {
	bad := Row{UniqueID: "up-bad", Fields: map[string]any{"billsec": 60}}
	src := newFakeSource(upstreamRow("up-1", "acme", 60), bad, upstreamRow("up-2", "acme", 30))
	w, recSvc, _ := newTestWorker(src)
	ctx := context.Background()

	if err := w.Cycle(ctx); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	page, err := recSvc.ListUnassigned(ctx, 0)
	if err != nil {
		t.Fatalf("ListUnassigned: %v", err)
	}
	if page.Count != 2 {
		t.Fatalf("imported %d records, want 2", page.Count)
	}
	// The rejected row stays unchecked so it can be retried.
	if src.checked["up-bad"] {
		t.Error("rejected row should not be flagged checked")
	}
	if !src.checked["up-1"] || !src.checked["up-2"] {
		t.Error("good rows should be flagged checked")
	}
}

func TestCycleDuplicateRowIsFlagged(t *testing.T) {
	src := newFakeSource(upstreamRow("up-1", "acme", 60))
	w, recSvc, _ := newTestWorker(src)
	ctx := context.Background()

	// Row already imported by an earlier run.
	if _, err := recSvc.Create(ctx, upstreamRow("up-1", "acme", 60).Fields); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	if err := w.Cycle(ctx); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if !src.checked["up-1"] {
		t.Error("duplicate row should be flagged checked")
	}
	page, err := recSvc.ListUnassigned(ctx, 0)
	if err != nil {
		t.Fatalf("ListUnassigned: %v", err)
	}
	if page.Count != 1 {
		t.Fatalf("count = %d, want 1", page.Count)
	}
}

func TestCycleAssignsRecordsToRegisteredAccount(t *testing.T) {
	src := newFakeSource(upstreamRow("up-1", "acme", 60))
	w, recSvc, _, dir := newTestWorkerWithAccounts(src)
	ctx := context.Background()

	if _, err := dir.Create(ctx, accounts.Account{Account: "acme"}); err != nil {
		t.Fatalf("register account: %v", err)
	}

	if err := w.Cycle(ctx); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	window := timewindow.Window{
		Start: time.Date(2017, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2017, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	page, err := recSvc.List(ctx, accounts.Scope{Accounts: []string{"acme"}}, window, "all", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Count != 1 {
		t.Fatalf("scoped count = %d, want imported record visible to its account", page.Count)
	}

	unassigned, err := recSvc.ListUnassigned(ctx, 0)
	if err != nil {
		t.Fatalf("ListUnassigned: %v", err)
	}
	if unassigned.Count != 0 {
		t.Fatalf("unassigned count = %d, want 0 after assignment", unassigned.Count)
	}
}

func TestCycleLeavesUnknownAccountOrphaned(t *testing.T) {
	src := newFakeSource(upstreamRow("up-1", "ghost", 60))
	w, recSvc, _, _ := newTestWorkerWithAccounts(src)
	ctx := context.Background()

	if err := w.Cycle(ctx); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	window := timewindow.Window{
		Start: time.Date(2017, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2017, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	page, err := recSvc.List(ctx, accounts.Scope{Accounts: []string{"ghost"}}, window, "all", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Count != 0 {
		t.Fatalf("scoped count = %d, want orphan hidden until claimed", page.Count)
	}

	unassigned, err := recSvc.ListUnassigned(ctx, 0)
	if err != nil {
		t.Fatalf("ListUnassigned: %v", err)
	}
	if unassigned.Count != 1 {
		t.Fatalf("unassigned count = %d, want 1", unassigned.Count)
	}
}

func TestCycleFetchFailureAborts(t *testing.T) {
	src := newFakeSource(upstreamRow("up-1", "acme", 60))
	src.fetchEr = errors.New("upstream down")
	w, _, _ := newTestWorker(src)

	if err := w.Cycle(context.Background()); err == nil {
		t.Fatal("expected cycle to fail when fetch fails")
	}
	if src.checked["up-1"] {
		t.Error("no rows should be flagged when the fetch fails")
	}
}

func TestCycleSingleFlight(t *testing.T) {
	src := newFakeSource(upstreamRow("up-1", "acme", 60))
	src.blockFetch = make(chan struct{})
	w, _, _ := newTestWorker(src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- w.Cycle(ctx) }()

	// Wait for the first cycle to reach its fetch.
	for src.fetchCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	// Overlapping tick: skipped without touching the source.
	if err := w.Cycle(ctx); err != nil {
		t.Fatalf("overlapping Cycle: %v", err)
	}
	if src.fetchCount() != 1 {
		t.Fatalf("fetches = %d, want 1", src.fetchCount())
	}

	close(src.blockFetch)
	if err := <-done; err != nil {
		t.Fatalf("first Cycle: %v", err)
	}
}

type fakeLock struct {
	held     bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	return !l.held, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

func TestCycleSkipsWhenLockHeldElsewhere(t *testing.T) {
	src := newFakeSource(upstreamRow("up-1", "acme", 60))
	recSvc := records.NewService(records.NewMemoryRepo(), 0)
	lock := &fakeLock{held: true}
	w := NewWorker(src, recSvc, nil, nil, lock, testLogger(), Config{})

	if err := w.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if src.fetchCount() != 0 {
		t.Fatalf("fetches = %d, want 0", src.fetchCount())
	}
	if lock.releases != 0 {
		t.Fatalf("releases = %d, want 0", lock.releases)
	}
}

func TestCycleReleasesLock(t *testing.T) {
	src := newFakeSource()
	recSvc := records.NewService(records.NewMemoryRepo(), 0)
	lock := &fakeLock{}
	w := NewWorker(src, recSvc, nil, nil, lock, testLogger(), Config{})

	if err := w.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if lock.acquires != 1 || lock.releases != 1 {
		t.Fatalf("acquires=%d releases=%d, want 1/1", lock.acquires, lock.releases)
	}
}
