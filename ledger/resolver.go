/*
resolver.go - Find-or-create resolution for accounts and entry types

Resolution is case-insensitive and whitespace-trimmed: "Checking" and
" checking " name the same account. A miss creates the record with zero
balance/goal. Resolvers have no error path of their own; storage failures
propagate unchanged.

Resolvers are built over the transactional Store passed into a
submission's atomic operation, so created rows roll back with everything
else.
*/
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT RESOLVER
// =============================================================================

type AccountResolver struct {
	store Store
}

func NewAccountResolver(store Store) *AccountResolver {
	return &AccountResolver{store: store}
}

// Resolve returns the owner's account matching the normalized name,
// creating it with a zero balance if none exists.
func (r *AccountResolver) Resolve(ctx context.Context, owner OwnerID, name string) (*Account, error) {
	acct, err := r.store.FindAccountByName(ctx, owner, name)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	acct = &Account{
		ID:         NewAccountID(),
		OwnerID:    owner,
		Name:       strings.TrimSpace(name),
		Balance:    decimal.Zero,
		SavingGoal: decimal.Zero,
		CreatedAt:  Today(),
	}
	if err := r.store.InsertAccount(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// =============================================================================
// ENTRY TYPE RESOLVER
// =============================================================================

type EntryTypeResolver struct {
	store Store

	// resolved types are memoized per submission so a transfer resolves
	// each of its two system kinds at most once.
	memo map[string]*EntryType
}

func NewEntryTypeResolver(store Store) *EntryTypeResolver {
	return &EntryTypeResolver{store: store, memo: map[string]*EntryType{}}
}

// Resolve returns the owner's entry type for the kind, creating it if
// missing. System kinds (transfers, debt) are keyed on kind alone; for
// user kinds a non-empty name keys a category on (kind, name) and a
// blank name means the kind's default category, never an arbitrary
// existing one.
func (r *EntryTypeResolver) Resolve(ctx context.Context, owner OwnerID, kind Kind, name string) (*EntryType, error) {
	lookup := name
	if kind.System() {
		lookup = ""
	} else if strings.TrimSpace(lookup) == "" {
		lookup = kind.DefaultTypeName()
	}

	memoKey := string(owner) + "|" + string(kind) + "|" + NormalizeName(lookup)
	if t, ok := r.memo[memoKey]; ok {
		return t, nil
	}

	t, err := r.store.FindEntryType(ctx, owner, kind, lookup)
	if err == nil {
		r.memo[memoKey] = t
		return t, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	displayName := strings.TrimSpace(lookup)
	if displayName == "" {
		displayName = kind.DefaultTypeName()
	}
	t = &EntryType{
		ID:         NewEntryTypeID(),
		OwnerID:    owner,
		Name:       displayName,
		Kind:       kind,
		BudgetGoal: decimal.Zero,
		CreatedAt:  Today(),
	}
	if err := r.store.InsertEntryType(ctx, t); err != nil {
		return nil, err
	}
	r.memo[memoKey] = t
	return t, nil
}
