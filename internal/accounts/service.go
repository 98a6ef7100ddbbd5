package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mango/internal/apperr"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// ResolveScope expands an account name into the set of accounts a
// query may match. An empty account yields the global/public scope; an
// org with members yields itself plus every member; a plain account
// degenerates to the singleton.
func (s *Service) ResolveScope(ctx context.Context, account string) (Scope, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return GlobalScope(), nil
	}

	members, err := s.repo.MembersOf(ctx, account)
	if err != nil {
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			// Unknown accounts still scope to themselves; record
			// ownership is the actual filter downstream.
			return Singleton(account), nil
		}
		return Scope{}, fmt.Errorf("resolve scope %q: %w", account, err)
	}
	if len(members) == 0 {
		return Singleton(account), nil
	}

	// Self plus members, deduplicated so a record owned by more than
	// one matched account is still counted once.
	return Scope{Accounts: lo.Uniq(append(members, account))}, nil
}

// Create registers a new account or org. The account name is unique;
// a duplicate fails with a DuplicateError naming the field.
func (s *Service) Create(ctx context.Context, a Account) (Account, error) {
	a.Account = strings.TrimSpace(a.Account)
	if a.Account == "" {
		return Account{}, apperr.Invalid("account", apperr.ReasonMissing)
	}
	if a.Type == "" {
		a.Type = TypeUser
	}
	if a.Type != TypeUser && a.Type != TypeOrg {
		return Account{}, apperr.Invalid("type", apperr.ReasonMalformed)
	}
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	} else if _, err := uuid.Parse(a.UUID); err != nil {
		return Account{}, apperr.Invalid("uuid", apperr.ReasonMalformed)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, a); err != nil {
		var dup *apperr.DuplicateError
		if errors.As(err, &dup) {
			return Account{}, err
		}
		return Account{}, fmt.Errorf("create account %q: %w", a.Account, err)
	}
	return a, nil
}

// Get returns an account by uuid.
func (s *Service) Get(ctx context.Context, accountUUID string) (Account, error) {
	a, err := s.repo.FindByUUID(ctx, accountUUID)
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// GetByName returns an account by its unique name.
func (s *Service) GetByName(ctx context.Context, account string) (Account, error) {
	return s.repo.FindByName(ctx, account)
}

// Exists reports whether an account with the given name is registered.
func (s *Service) Exists(ctx context.Context, account string) (bool, error) {
	_, err := s.repo.FindByName(ctx, account)
	if err != nil {
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AddMember attaches a member account to an org.
func (s *Service) AddMember(ctx context.Context, org, member string) error {
	if org == "" || member == "" {
		return apperr.Invalid("member", apperr.ReasonMissing)
	}
	return s.repo.AddMember(ctx, org, member)
}

// RemoveMember detaches a member from an org.
func (s *Service) RemoveMember(ctx context.Context, org, member string) error {
	ok, err := s.repo.RemoveMember(ctx, org, member)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Missing("member", member)
	}
	return nil
}

// Members lists the member names of an org.
func (s *Service) Members(ctx context.Context, org string) ([]string, error) {
	return s.repo.MembersOf(ctx, org)
}

// Delete removes an account by uuid.
func (s *Service) Delete(ctx context.Context, accountUUID string) error {
	ok, err := s.repo.Delete(ctx, accountUUID)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", accountUUID, err)
	}
	if !ok {
		return apperr.Missing("account", accountUUID)
	}
	return nil
}
