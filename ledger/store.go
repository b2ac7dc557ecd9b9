/*
store.go - Persistence port for the ledger core

PURPOSE:
  Defines the interface between the writer components and the database.
  The core never talks to SQL directly; it resolves and writes through
  this port, and groups writes with TxStore.WithTx.

KEY INTERFACES:
  Store:   owner-scoped finds, inserts, and updates for all four entities
  TxStore: Store plus WithTx, the all-or-nothing boundary every
           submission runs inside

ATOMICITY CONTRACT:
  WithTx(fn) passes fn a Store whose writes belong to one transaction.
  If fn returns an error, every write is rolled back; otherwise all of
  them commit together. No partial transfer or half-updated debt is ever
  observable.

SERIALIZATION:
  Both implementations hold an exclusive lock for the duration of
  WithTx. Concurrent submissions serialize, so two reconciliations of
  the same account cannot race on the delta computation.

UNIQUENESS:
  Account and entry-type names are unique per (owner, NormalizeName(name)).
  This is enforced at the storage boundary (unique index / insert check),
  surfaced as ErrDuplicateName.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - ledger/store: in-memory store for tests and dev mode
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the owner-scoped persistence port. Every lookup takes the
// caller's owner id; no cross-owner reference is ever resolved.
type Store interface {
	// Accounts. FindAccountByName matches on NormalizeName(name).
	FindAccountByName(ctx context.Context, owner OwnerID, name string) (*Account, error)
	FindAccountByID(ctx context.Context, owner OwnerID, id AccountID) (*Account, error)
	InsertAccount(ctx context.Context, a *Account) error
	UpdateAccount(ctx context.Context, a *Account) error
	ListAccounts(ctx context.Context, owner OwnerID) ([]Account, error)

	// Entry types. FindEntryType matches on kind alone when name is empty
	// (system kinds), otherwise on (kind, NormalizeName(name)).
	FindEntryType(ctx context.Context, owner OwnerID, kind Kind, name string) (*EntryType, error)
	InsertEntryType(ctx context.Context, t *EntryType) error
	ListEntryTypes(ctx context.Context, owner OwnerID) ([]EntryType, error)

	// Entries are append-only: no update or delete methods exist. An
	// account's entries disappear only when the account itself is deleted
	// (storage-level cascade).
	InsertEntry(ctx context.Context, e *Entry) error
	EntriesByAccount(ctx context.Context, owner OwnerID, account AccountID) ([]Entry, error)
	EntriesByOwner(ctx context.Context, owner OwnerID) ([]Entry, error)

	// SumSignedAmounts returns the signed sum of an account's entries,
	// the value the cached balance must equal.
	SumSignedAmounts(ctx context.Context, owner OwnerID, account AccountID) (decimal.Decimal, error)

	// Debts.
	FindDebtByID(ctx context.Context, owner OwnerID, id DebtID) (*Debt, error)
	InsertDebt(ctx context.Context, d *Debt) error
	UpdateDebt(ctx context.Context, d *Debt) error
	ListDebts(ctx context.Context, owner OwnerID) ([]Debt, error)
}

// TxStore wraps Store with the atomic operation every submission runs in.
type TxStore interface {
	Store

	// WithTx executes fn within one transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed. The
	// implementation holds an exclusive lock until fn returns.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// OnboardingMarker is the external onboarding-progress collaborator
// advanced when batch account setup succeeds.
type OnboardingMarker interface {
	MarkAccountsConfigured(ctx context.Context, owner OwnerID) error
}
