package records

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mango/internal/accounts"
	"mango/internal/apperr"
	"mango/internal/timewindow"
)

func testWindow(t *testing.T) timewindow.Window {
	t.Helper()
	w, err := timewindow.Resolve("2023-11-14", "2023-11-15")
	if err != nil {
		t.Fatalf("resolve window: %v", err)
	}
	return w
}

func seedRecords(t *testing.T, repo *MemoryRepo, n int, account string, start time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := repo.Insert(context.Background(), Record{
			UUID:        fmt.Sprintf("%08d-0000-4000-8000-000000000000", i),
			Account:     account,
			AccountCode: account,
			Start:       start,
			Duration:    60,
			Billsec:     60,
			Seconds:     60,
			Assigned:    true,
		})
		if err != nil {
			t.Fatalf("seed record %d: %v", i, err)
		}
	}
}

func TestList_CountIsPreMatchTotal(t *testing.T) {
	repo := NewMemoryRepo()
	w := testWindow(t)
	seedRecords(t, repo, 25, "acme", w.Start.Add(time.Hour))
	svc := NewService(repo, 10)

	page, err := svc.List(context.Background(), accounts.Singleton("acme"), w, StatusAll, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if page.Count != 25 {
		t.Fatalf("count = %d, want 25", page.Count)
	}
	if len(page.Results) != 10 {
		t.Fatalf("len(results) = %d, want 10", len(page.Results))
	}

	// Count is independent of the requested page.
	last, err := svc.List(context.Background(), accounts.Singleton("acme"), w, StatusAll, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if last.Count != 25 || len(last.Results) != 5 {
		t.Fatalf("page 2: count=%d len=%d, want 25/5", last.Count, len(last.Results))
	}
}

func TestList_PastEndReturnsEmptyPage(t *testing.T) {
	repo := NewMemoryRepo()
	w := testWindow(t)
	seedRecords(t, repo, 3, "acme", w.Start)
	svc := NewService(repo, 10)

	page, err := svc.List(context.Background(), accounts.Singleton("acme"), w, StatusAll, 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(page.Results) != 0 || page.Count != 3 {
		t.Fatalf("expected empty page with count 3, got %+v", page)
	}
}

func TestList_MultiAccountScopeNoDoubleCounting(t *testing.T) {
	repo := NewMemoryRepo()
	w := testWindow(t)
	seedRecords(t, repo, 2, "alice", w.Start)
	seedRecords2 := func(uuid, account string) {
		if err := repo.Insert(context.Background(), Record{
			UUID: uuid, Account: account, AccountCode: account,
			Start: w.Start, Assigned: true,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	seedRecords2("bbbbbbbb-0000-4000-8000-000000000000", "bob")
	svc := NewService(repo, 10)

	scope := accounts.Scope{Accounts: []string{"alice", "bob", "alice"}}
	page, err := svc.List(context.Background(), scope, w, StatusAll, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if page.Count != 3 || len(page.Results) != 3 {
		t.Fatalf("scope overlap must not double count: %+v", page)
	}
}

func TestList_ExcludesUnassigned(t *testing.T) {
	repo := NewMemoryRepo()
	w := testWindow(t)
	if err := repo.Insert(context.Background(), Record{
		UUID: "orphaned-0000-4000-8000-000000000000", Account: "acme",
		AccountCode: "acme", Start: w.Start, Assigned: false,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewService(repo, 10)

	page, err := svc.List(context.Background(), accounts.Singleton("acme"), w, StatusAll, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if page.Count != 0 {
		t.Fatalf("unassigned records must not appear in scoped listings")
	}

	orphans, err := svc.ListUnassigned(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if orphans.Count != 1 {
		t.Fatalf("unassigned listing should surface the orphan, got %+v", orphans)
	}
}

func TestList_GlobalScopeOnlyPublic(t *testing.T) {
	repo := NewMemoryRepo()
	w := testWindow(t)
	ctx := context.Background()
	_ = repo.Insert(ctx, Record{UUID: "aaaa0000-0000-4000-8000-000000000000", Account: "acme", AccountCode: "acme", Start: w.Start, Assigned: true, Public: false})
	_ = repo.Insert(ctx, Record{UUID: "bbbb0000-0000-4000-8000-000000000000", Account: "acme", AccountCode: "acme", Start: w.Start, Assigned: true, Public: true})
	svc := NewService(repo, 10)

	page, err := svc.List(ctx, accounts.GlobalScope(), w, StatusAll, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if page.Count != 1 || !page.Results[0].Public {
		t.Fatalf("global scope must only see public records: %+v", page)
	}
}

func TestList_SortsByUUIDDescending(t *testing.T) {
	repo := NewMemoryRepo()
	w := testWindow(t)
	seedRecords(t, repo, 5, "acme", w.Start)
	svc := NewService(repo, 10)

	page, err := svc.List(context.Background(), accounts.Singleton("acme"), w, StatusAll, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for i := 1; i < len(page.Results); i++ {
		if page.Results[i-1].UUID < page.Results[i].UUID {
			t.Fatalf("results not sorted by uuid desc")
		}
	}
}

func TestCreate_DuplicateUUID(t *testing.T) {
	svc := NewService(NewMemoryRepo(), 10)
	ctx := context.Background()
	raw := map[string]any{
		"account": "acme",
		"uuid":    "5f6b1c1e-8f3a-4b56-9b39-0c30c6f7a001",
	}
	if _, err := svc.Create(ctx, raw); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, raw)
	var dup *apperr.DuplicateError
	if !errors.As(err, &dup) || dup.Field != "uuid" {
		t.Fatalf("expected DuplicateError naming uuid, got %v", err)
	}
}

func TestDelete_MissingRecord(t *testing.T) {
	svc := NewService(NewMemoryRepo(), 10)
	err := svc.Delete(context.Background(), "no-such-uuid")
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Resource != "record" || nf.UUID != "no-such-uuid" {
		t.Fatalf("not-found payload should carry resource and uuid: %+v", nf)
	}
}

func TestSetAssigned_Idempotent(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	_ = repo.Insert(ctx, Record{UUID: "cccc0000-0000-4000-8000-000000000000", Account: "acme", AccountCode: "acme"})
	svc := NewService(repo, 10)

	if err := svc.SetAssigned(ctx, "acme", "cccc0000-0000-4000-8000-000000000000"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if err := svc.SetAssigned(ctx, "acme", "cccc0000-0000-4000-8000-000000000000"); err != nil {
		t.Fatalf("re-assign should be a no-op, got %v", err)
	}
}

func TestGet_TenantIsolation(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	_ = repo.Insert(ctx, Record{UUID: "dddd0000-0000-4000-8000-000000000000", Account: "acme", AccountCode: "acme"})
	svc := NewService(repo, 10)

	if _, err := svc.Get(ctx, "acme", "dddd0000-0000-4000-8000-000000000000"); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	_, err := svc.Get(ctx, "rival", "dddd0000-0000-4000-8000-000000000000")
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("cross-tenant lookup must miss, got %v", err)
	}
}
