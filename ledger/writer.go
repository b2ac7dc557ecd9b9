/*
writer.go - Entry persistence and balance recomputation

The EntryWriter is the single place entries enter the ledger. It runs the
entity-level invariants, inserts the entry, then recomputes the owning
account's cached balance from the signed sum of its entries and persists
it. Callers run inside a submission's atomic operation, so a failed
recomputation rolls the entry back with it.
*/
package ledger

import "context"

type EntryWriter struct {
	store Store
}

func NewEntryWriter(store Store) *EntryWriter {
	return &EntryWriter{store: store}
}

// Write persists one entry against a resolved account and entry type.
// Entity-level invariant violations come back as *ValidationError; the
// account's Balance field is updated in place on success.
func (w *EntryWriter) Write(ctx context.Context, account *Account, entryType *EntryType, e Entry) (*Entry, error) {
	e.OwnerID = account.OwnerID
	e.AccountID = account.ID
	e.EntryTypeID = entryType.ID
	if e.ID == "" {
		e.ID = NewEntryID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = Today()
	}

	if fe := validateEntry(e); fe.Any() {
		return nil, &ValidationError{Fields: fe}
	}

	if err := w.store.InsertEntry(ctx, &e); err != nil {
		return nil, err
	}

	// balance == sum of signed entry amounts, recomputed rather than
	// incremented so a drifted cache heals on the next write.
	sum, err := w.store.SumSignedAmounts(ctx, account.OwnerID, account.ID)
	if err != nil {
		return nil, err
	}
	account.Balance = sum
	if err := w.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}

	return &e, nil
}
