package accounts

import "context"

// Repository abstracts account/org storage.
//
// Implementations must treat the account name as a unique key and
// report duplicate creation through apperr.DuplicateError.
type Repository interface {
	Insert(ctx context.Context, a Account) error
	FindByUUID(ctx context.Context, uuid string) (Account, error)
	FindByName(ctx context.Context, account string) (Account, error)

	// MembersOf returns the member account names of an org,
	// empty (not an error) when the org has no members.
	MembersOf(ctx context.Context, org string) ([]string, error)

	AddMember(ctx context.Context, org, member string) error
	RemoveMember(ctx context.Context, org, member string) (bool, error)

	Delete(ctx context.Context, uuid string) (bool, error)
}
