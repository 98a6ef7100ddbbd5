package accounts

import "time"

// Account is a tenant (user) or a tenant group (org).
//
// Multi-tenant invariant: the account name is unique across the
// collection; listings and summaries for an org fan out to the org
// itself plus all of its members.

type Account struct {
	UUID    string `json:"uuid" db:"uuid"`
	Account string `json:"account" db:"account"`
	Email   string `json:"email,omitempty" db:"email"`

	// Type distinguishes plain user accounts from orgs.
	Type AccountType `json:"type" db:"type"`

	// Members holds member account names when Type == org.
	Members []string `json:"members,omitempty" db:"-"`

	// Orgs holds the org names this account belongs to.
	Orgs []string `json:"orgs,omitempty" db:"-"`

	Public bool `json:"public" db:"public"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AccountType string

const (
	TypeUser AccountType = "user"
	TypeOrg  AccountType = "org"
)

// Scope is the set of account names a query is allowed to match.
// A zero-account scope is global: only public documents are visible
// and no tenant filter applies.
type Scope struct {
	Accounts []string
}

// Global reports whether the scope carries no tenant filter.
func (s Scope) Global() bool { return len(s.Accounts) == 0 }

// Matches reports whether the given account name falls inside the
// scope. Multi-account scopes are an OR filter: a document owned by
// any scoped account matches, and matches once.
func (s Scope) Matches(account string) bool {
	for _, a := range s.Accounts {
		if a == account {
			return true
		}
	}
	return false
}

// Singleton builds a scope that matches exactly one account.
func Singleton(account string) Scope {
	return Scope{Accounts: []string{account}}
}

// GlobalScope is the public, tenant-unfiltered scope.
func GlobalScope() Scope { return Scope{} }
