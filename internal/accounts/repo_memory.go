package accounts

import (
	"context"
	"sync"

	"mango/internal/apperr"

	"github.com/samber/lo"
)

// MemoryRepo is an in-memory account repository for tests and early
// development. It enforces the same uniqueness rules as the SQL repo.
type MemoryRepo struct {
	mu       sync.Mutex
	accounts []Account
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(ctx context.Context, a Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.accounts {
		if got.Account == a.Account {
			return apperr.Duplicate("account", "account", a.Account)
		}
		if got.UUID == a.UUID {
			return apperr.Duplicate("account", "uuid", a.UUID)
		}
	}
	a.Members = append([]string(nil), a.Members...)
	r.accounts = append(r.accounts, a)
	return nil
}

func (r *MemoryRepo) FindByUUID(ctx context.Context, uuid string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.UUID == uuid {
			return a, nil
		}
	}
	return Account{}, apperr.Missing("account", uuid)
}

func (r *MemoryRepo) FindByName(ctx context.Context, account string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Account == account {
			return a, nil
		}
	}
	return Account{}, apperr.Missing("account", account)
}

func (r *MemoryRepo) MembersOf(ctx context.Context, org string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Account == org {
			return append([]string(nil), a.Members...), nil
		}
	}
	return nil, apperr.Missing("account", org)
}

func (r *MemoryRepo) AddMember(ctx context.Context, org, member string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		if r.accounts[i].Account == org {
			r.accounts[i].Members = lo.Uniq(append(r.accounts[i].Members, member))
			return nil
		}
	}
	return apperr.Missing("account", org)
}

func (r *MemoryRepo) RemoveMember(ctx context.Context, org, member string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		if r.accounts[i].Account == org {
			before := len(r.accounts[i].Members)
			r.accounts[i].Members = lo.Without(r.accounts[i].Members, member)
			return len(r.accounts[i].Members) < before, nil
		}
	}
	return false, apperr.Missing("account", org)
}

func (r *MemoryRepo) Delete(ctx context.Context, uuid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.accounts {
		if a.UUID == uuid {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
