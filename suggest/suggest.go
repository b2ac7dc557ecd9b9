// Package suggest returns ranked name lists for form autocompletion.
// Not part of the core's correctness: a stale or empty suggestion list
// never blocks a submission.
package suggest

import (
	"context"
	"sort"

	"github.com/quillfin/pocketbook/ledger"
)

type Service struct {
	store ledger.Store
}

func New(store ledger.Store) *Service {
	return &Service{store: store}
}

// AccountNames returns the owner's account names, most-used first
// (entry count, then name for a stable order).
func (s *Service) AccountNames(ctx context.Context, owner ledger.OwnerID) ([]string, error) {
	accounts, err := s.store.ListAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.EntriesByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	usage := map[ledger.AccountID]int{}
	for _, e := range entries {
		usage[e.AccountID]++
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		if usage[accounts[i].ID] != usage[accounts[j].ID] {
			return usage[accounts[i].ID] > usage[accounts[j].ID]
		}
		return accounts[i].Name < accounts[j].Name
	})

	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.Name)
	}
	return names, nil
}

// EntryTypeNames returns the owner's user-named category names
// (income/expense only; system kinds are engine-generated), most-used
// first.
func (s *Service) EntryTypeNames(ctx context.Context, owner ledger.OwnerID) ([]string, error) {
	types, err := s.store.ListEntryTypes(ctx, owner)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.EntriesByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	usage := map[ledger.EntryTypeID]int{}
	for _, e := range entries {
		usage[e.EntryTypeID]++
	}

	var named []ledger.EntryType
	for _, t := range types {
		if !t.Kind.System() {
			named = append(named, t)
		}
	}
	sort.SliceStable(named, func(i, j int) bool {
		if usage[named[i].ID] != usage[named[j].ID] {
			return usage[named[i].ID] > usage[named[j].ID]
		}
		return named[i].Name < named[j].Name
	})

	names := make([]string, 0, len(named))
	for _, t := range named {
		names = append(names, t.Name)
	}
	return names, nil
}
