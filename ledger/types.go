/*
Package ledger implements the reconciliation and submission core of a
personal money tracker.

PURPOSE:
  This package contains the domain types and writer components for a
  single-user ledger: accounts, entry types (categories), ledger entries,
  and peer debts. An account's stored balance is a cached projection of
  its entries; every writer in this package keeps the invariant

      balance == sum of signed entry amounts

  true after each successful submission.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: a named bucket of money with a cached balance and saving goal
  - EntryType: a category tagged with a Kind that implies the sign of
    every entry recorded under it
  - Entry: one immutable money movement (amount stored as magnitude)
  - Debt: money lent to or borrowed from a contact, with monotonic totals

DESIGN PRINCIPLES:
  1. Derived state: balances are recomputed from entries, never edited
  2. Precision: decimal.Decimal everywhere, no floats
  3. Immutability: entries are written once, never updated
  4. Ownership: every row belongs to exactly one owner; lookups are
     always owner-scoped

SEE ALSO:
  - store.go: persistence port consumed by the writers
  - writer.go: entry persistence and balance recomputation
  - reconcile.go, transfer.go, debt.go, batch.go: the writer components
*/
package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OwnerID string
type AccountID string
type EntryTypeID string
type EntryID string
type DebtID string

func NewAccountID() AccountID     { return AccountID(uuid.NewString()) }
func NewEntryTypeID() EntryTypeID { return EntryTypeID(uuid.NewString()) }
func NewEntryID() EntryID         { return EntryID(uuid.NewString()) }
func NewDebtID() DebtID           { return DebtID(uuid.NewString()) }

// =============================================================================
// LIMITS
// =============================================================================

const (
	MaxNameLen        = 100
	MaxDescriptionLen = 255
)

// NormalizeName is the canonical form used for name matching and for the
// storage-level uniqueness constraint: trim, then lowercase.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// =============================================================================
// KIND - Category of an entry; implies the sign of its amount
// =============================================================================

type Kind string

const (
	KindIncome      Kind = "income"
	KindExpense     Kind = "expense"
	KindTransferIn  Kind = "transfer_in"
	KindTransferOut Kind = "transfer_out"
	KindDebtIn      Kind = "debt_in"
	KindDebtOut     Kind = "debt_out"
)

func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransferIn, KindTransferOut, KindDebtIn, KindDebtOut:
		return true
	}
	return false
}

// System returns true for engine-generated kinds. These are resolved per
// (owner, kind); user-named categories are resolved per (owner, kind, name).
func (k Kind) System() bool {
	switch k {
	case KindTransferIn, KindTransferOut, KindDebtIn, KindDebtOut:
		return true
	}
	return false
}

// Sign returns +1 for kinds that add to an account balance and -1 for
// kinds that subtract from it.
func (k Kind) Sign() decimal.Decimal {
	switch k {
	case KindIncome, KindTransferIn, KindDebtIn:
		return decimal.NewFromInt(1)
	default:
		return decimal.NewFromInt(-1)
	}
}

// DefaultTypeName is the display name used when a category is resolved
// without an explicit user-supplied name.
func (k Kind) DefaultTypeName() string {
	switch k {
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	case KindTransferIn:
		return "Transfer in"
	case KindTransferOut:
		return "Transfer out"
	case KindDebtIn:
		return "Debt repayment"
	case KindDebtOut:
		return "Debt"
	default:
		return string(k)
	}
}

// =============================================================================
// ACCOUNT
// =============================================================================

type Account struct {
	ID      AccountID
	OwnerID OwnerID
	Name    string

	// Balance is a cached projection: always equal to the signed sum of the
	// account's entries after a successful submission.
	Balance    decimal.Decimal
	SavingGoal decimal.Decimal

	CreatedAt time.Time
}

// =============================================================================
// ENTRY TYPE
// =============================================================================

type EntryType struct {
	ID         EntryTypeID
	OwnerID    OwnerID
	Name       string
	Kind       Kind
	BudgetGoal decimal.Decimal
	CreatedAt  time.Time
}

// =============================================================================
// ENTRY - One immutable money movement
// =============================================================================

type Entry struct {
	ID          EntryID
	OwnerID     OwnerID
	AccountID   AccountID
	EntryTypeID EntryTypeID

	// Amount is the magnitude; the sign of its balance effect comes from
	// the entry type's kind.
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Note        string
	DebtID      DebtID // empty unless the entry belongs to a debt

	CreatedAt time.Time
}

// SignedAmount applies the kind's sign to the stored magnitude.
func (e Entry) SignedAmount(kind Kind) decimal.Decimal {
	return e.Amount.Mul(kind.Sign())
}

// =============================================================================
// DEBT - Peer lending / borrowing
// =============================================================================

type Direction string

const (
	DirectionLent     Direction = "lent"
	DirectionBorrowed Direction = "borrowed"
)

func (d Direction) Valid() bool {
	return d == DirectionLent || d == DirectionBorrowed
}

type DebtStatus string

const (
	DebtOngoing DebtStatus = "ongoing"
	DebtPaid    DebtStatus = "paid"
)

type Debt struct {
	ID          DebtID
	OwnerID     OwnerID
	ContactName string
	Direction   Direction
	Status      DebtStatus

	// Both totals are monotonic: updates may only grow them, and
	// TotalReconciled never exceeds TotalCommitted.
	TotalCommitted  decimal.Decimal
	TotalReconciled decimal.Decimal

	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Outstanding is the amount still unsettled.
func (d Debt) Outstanding() decimal.Decimal {
	return d.TotalCommitted.Sub(d.TotalReconciled)
}

// =============================================================================
// TIME
// =============================================================================

// Today returns the current date truncated to day granularity, UTC.
// Synthetic entries (reconciliation adjustments, batch setup rows without
// an explicit date) are dated with it.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
