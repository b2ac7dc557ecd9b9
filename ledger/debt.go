/*
debt.go - Peer lending and borrowing

A debt tracks money lent to or borrowed from a contact. Recording one
writes the debt row plus, when an account is named, the cash-side
entries: a debt_out entry for the committed amount and a debt_in entry
for any reconciled (already settled) amount. The meaning of the kinds is
direction-relative and carried by the generated description; the kinds
themselves are fixed so the sign of every entry stays implied by its
entry type.

Updates are monotonic: only the increase since the persisted totals
becomes a new entry, and submitting a total below its persisted value is
a validation error. total_reconciled never exceeds total_committed.
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DebtInput struct {
	DebtID          DebtID // empty creates a new debt
	ContactName     string
	Direction       Direction
	TotalCommitted  decimal.Decimal
	TotalReconciled decimal.Decimal
	Note            string
	AccountName     string // optional; no cash-side entries when empty
	Date            time.Time
}

type DebtLedger struct {
	store    Store
	writer   *EntryWriter
	accounts *AccountResolver
	types    *EntryTypeResolver
	describe Describer
	check    EntryValidator
}

func NewDebtLedger(store Store, describe Describer) *DebtLedger {
	return &DebtLedger{
		store:    store,
		writer:   NewEntryWriter(store),
		accounts: NewAccountResolver(store),
		types:    NewEntryTypeResolver(store),
		describe: describe,
	}
}

// Record creates or updates a debt and writes the difference entries.
// Runs inside the caller's atomic operation.
func (dl *DebtLedger) Record(ctx context.Context, owner OwnerID, in DebtInput) (*Debt, error) {
	fe := FieldErrors{}
	dl.check.RequiredName(fe, "contact_name", in.ContactName)
	if !in.Direction.Valid() {
		fe.Add("direction", "must be lent or borrowed")
	}
	dl.check.PositiveAmount(fe, "total_committed", in.TotalCommitted)
	dl.check.NonNegative(fe, "total_reconciled", in.TotalReconciled)
	dl.check.ReconciledWithinCommitted(fe, "total_reconciled", in.TotalCommitted, in.TotalReconciled)
	if fe.Any() {
		return nil, &ValidationError{Fields: fe}
	}

	if in.DebtID == "" {
		return dl.create(ctx, owner, in)
	}
	return dl.update(ctx, owner, in)
}

func (dl *DebtLedger) create(ctx context.Context, owner OwnerID, in DebtInput) (*Debt, error) {
	debt := &Debt{
		ID:              NewDebtID(),
		OwnerID:         owner,
		ContactName:     in.ContactName,
		Direction:       in.Direction,
		Status:          debtStatus(in.TotalCommitted, in.TotalReconciled),
		TotalCommitted:  in.TotalCommitted,
		TotalReconciled: in.TotalReconciled,
		Note:            in.Note,
		CreatedAt:       Today(),
		UpdatedAt:       Today(),
	}
	if err := dl.store.InsertDebt(ctx, debt); err != nil {
		return nil, err
	}

	if err := dl.writeDifferences(ctx, debt, in, in.TotalCommitted, in.TotalReconciled); err != nil {
		return nil, err
	}
	return debt, nil
}

func (dl *DebtLedger) update(ctx context.Context, owner OwnerID, in DebtInput) (*Debt, error) {
	debt, err := dl.store.FindDebtByID(ctx, owner, in.DebtID)
	if err != nil {
		return nil, err
	}

	// Monotonicity: totals may only grow from their persisted values.
	fe := FieldErrors{}
	if in.TotalCommitted.LessThan(debt.TotalCommitted) {
		fe.Add("total_committed", "cannot be lower than the recorded total")
	}
	if in.TotalReconciled.LessThan(debt.TotalReconciled) {
		fe.Add("total_reconciled", "cannot be lower than the recorded total")
	}
	if fe.Any() {
		return nil, &ValidationError{Fields: fe}
	}

	committedDiff := in.TotalCommitted.Sub(debt.TotalCommitted)
	reconciledDiff := in.TotalReconciled.Sub(debt.TotalReconciled)

	debt.ContactName = in.ContactName
	debt.TotalCommitted = in.TotalCommitted
	debt.TotalReconciled = in.TotalReconciled
	debt.Status = debtStatus(in.TotalCommitted, in.TotalReconciled)
	if in.Note != "" {
		debt.Note = in.Note
	}
	debt.UpdatedAt = Today()
	if err := dl.store.UpdateDebt(ctx, debt); err != nil {
		return nil, err
	}

	if err := dl.writeDifferences(ctx, debt, in, committedDiff, reconciledDiff); err != nil {
		return nil, err
	}
	return debt, nil
}

// Reimburse records an additional settlement against an existing debt:
// bumps total_reconciled and, when an account is named, writes the
// debt_in entry. Rejects amounts that would overflow the outstanding
// balance.
func (dl *DebtLedger) Reimburse(ctx context.Context, owner OwnerID, id DebtID, accountName string, amount decimal.Decimal, date time.Time, note string) (*Entry, error) {
	fe := FieldErrors{}
	dl.check.PositiveAmount(fe, "amount", amount)
	dl.check.RequiredDate(fe, "date", date)
	if fe.Any() {
		return nil, &ValidationError{Fields: fe}
	}

	debt, err := dl.store.FindDebtByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(debt.Outstanding()) {
		return nil, Invalid("amount", "exceeds the outstanding amount")
	}

	debt.TotalReconciled = debt.TotalReconciled.Add(amount)
	debt.Status = debtStatus(debt.TotalCommitted, debt.TotalReconciled)
	debt.UpdatedAt = Today()
	if err := dl.store.UpdateDebt(ctx, debt); err != nil {
		return nil, err
	}

	if accountName == "" {
		return nil, nil
	}
	account, err := dl.accounts.Resolve(ctx, owner, accountName)
	if err != nil {
		return nil, err
	}
	inType, err := dl.types.Resolve(ctx, owner, KindDebtIn, "")
	if err != nil {
		return nil, err
	}
	return dl.writer.Write(ctx, account, inType, Entry{
		Amount:      amount,
		Date:        date,
		Description: dl.reconciledDescription(debt),
		Note:        note,
		DebtID:      debt.ID,
	})
}

// writeDifferences emits the outbound entry for the committed increase
// and the inbound entry for the reconciled increase. Zero differences
// write nothing; without an account name only the debt bookkeeping is
// recorded.
func (dl *DebtLedger) writeDifferences(ctx context.Context, debt *Debt, in DebtInput, committedDiff, reconciledDiff decimal.Decimal) error {
	if in.AccountName == "" {
		return nil
	}
	if committedDiff.IsZero() && reconciledDiff.IsZero() {
		return nil
	}

	account, err := dl.accounts.Resolve(ctx, debt.OwnerID, in.AccountName)
	if err != nil {
		return err
	}

	date := in.Date
	if date.IsZero() {
		date = Today()
	}

	if committedDiff.IsPositive() {
		outType, err := dl.types.Resolve(ctx, debt.OwnerID, KindDebtOut, "")
		if err != nil {
			return err
		}
		if _, err := dl.writer.Write(ctx, account, outType, Entry{
			Amount:      committedDiff,
			Date:        date,
			Description: dl.committedDescription(debt),
			Note:        in.Note,
			DebtID:      debt.ID,
		}); err != nil {
			return err
		}
	}

	if reconciledDiff.IsPositive() {
		inType, err := dl.types.Resolve(ctx, debt.OwnerID, KindDebtIn, "")
		if err != nil {
			return err
		}
		if _, err := dl.writer.Write(ctx, account, inType, Entry{
			Amount:      reconciledDiff,
			Date:        date,
			Description: dl.reconciledDescription(debt),
			Note:        in.Note,
			DebtID:      debt.ID,
		}); err != nil {
			return err
		}
	}

	return nil
}

func (dl *DebtLedger) committedDescription(debt *Debt) string {
	if debt.Direction == DirectionBorrowed {
		return dl.describe.Describe(DescDebtBorrowed, debt.ContactName)
	}
	return dl.describe.Describe(DescDebtLent, debt.ContactName)
}

func (dl *DebtLedger) reconciledDescription(debt *Debt) string {
	if debt.Direction == DirectionBorrowed {
		return dl.describe.Describe(DescRepayment, debt.ContactName)
	}
	return dl.describe.Describe(DescReimbursement, debt.ContactName)
}

func debtStatus(committed, reconciled decimal.Decimal) DebtStatus {
	if reconciled.Equal(committed) {
		return DebtPaid
	}
	return DebtOngoing
}
