package accounts

import (
	"context"
	"errors"
	"testing"

	"mango/internal/apperr"
)

func seedOrg(t *testing.T, repo *MemoryRepo, org string, members ...string) {
	t.Helper()
	err := repo.Insert(context.Background(), Account{
		UUID:    "org-" + org,
		Account: org,
		Type:    TypeOrg,
		Members: members,
	})
	if err != nil {
		t.Fatalf("seed org: %v", err)
	}
}

func TestResolveScope_EmptyAccountIsGlobal(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	scope, err := svc.ResolveScope(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !scope.Global() {
		t.Fatalf("expected global scope, got %+v", scope)
	}
}

func TestResolveScope_OrgFansOutToMembers(t *testing.T) {
	repo := NewMemoryRepo()
	seedOrg(t, repo, "acme", "alice", "bob")
	svc := NewService(repo)

	scope, err := svc.ResolveScope(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// Monotonicity: scope includes the org itself and every member.
	for _, want := range []string{"acme", "alice", "bob"} {
		if !scope.Matches(want) {
			t.Fatalf("scope missing %q: %+v", want, scope)
		}
	}
	if len(scope.Accounts) != 3 {
		t.Fatalf("expected 3 scoped accounts, got %d", len(scope.Accounts))
	}
}

func TestResolveScope_ZeroMembersDegeneratesToSingleton(t *testing.T) {
	repo := NewMemoryRepo()
	seedOrg(t, repo, "solo")
	svc := NewService(repo)

	scope, err := svc.ResolveScope(context.Background(), "solo")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(scope.Accounts) != 1 || !scope.Matches("solo") {
		t.Fatalf("expected singleton scope, got %+v", scope)
	}
}

func TestResolveScope_UnknownAccountIsSingleton(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	scope, err := svc.ResolveScope(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(scope.Accounts) != 1 || !scope.Matches("ghost") {
		t.Fatalf("expected singleton scope, got %+v", scope)
	}
}

func TestResolveScope_DeduplicatesOverlap(t *testing.T) {
	repo := NewMemoryRepo()
	// The org lists itself as a member; the scope must still hold it once.
	seedOrg(t, repo, "loop", "loop", "alice")
	svc := NewService(repo)

	scope, err := svc.ResolveScope(context.Background(), "loop")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(scope.Accounts) != 2 {
		t.Fatalf("expected 2 scoped accounts after dedup, got %+v", scope)
	}
}

func TestCreate_DuplicateNameFails(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, Account{Account: "acme"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(ctx, Account{Account: "acme"})
	var dup *apperr.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Field != "account" || dup.Value != "acme" {
		t.Fatalf("duplicate should name the conflicting field, got %+v", dup)
	}
}

func TestCreate_MissingNameFails(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.Create(context.Background(), Account{})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "account" {
		t.Fatalf("expected ValidationError for account, got %v", err)
	}
}

func TestCreate_AssignsUUID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	a, err := svc.Create(context.Background(), Account{Account: "acme"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.UUID == "" {
		t.Fatalf("expected generated uuid")
	}
}

func TestExists(t *testing.T) {
	repo := NewMemoryRepo()
	seedOrg(t, repo, "acme")
	svc := NewService(repo)

	ok, err := svc.Exists(context.Background(), "acme")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
	ok, err = svc.Exists(context.Background(), "ghost")
	if err != nil || ok {
		t.Fatalf("expected not exists, got %v %v", ok, err)
	}
}
