/*
reconcile.go - Balance reconciliation via synthetic adjustment entries

This is how a user states "my balance is now X" without entering a manual
correction: the reconciler computes the signed delta against the stored
balance and, when nonzero, writes one adjustment entry of the delta's
magnitude against the virtual "Balance Adjustment" counterparty.

Resubmitting an already-reconciled target is a no-op: the delta becomes
zero and nothing is written.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type BalanceReconciler struct {
	writer   *EntryWriter
	types    *EntryTypeResolver
	describe Describer
}

func NewBalanceReconciler(store Store, describe Describer) *BalanceReconciler {
	return &BalanceReconciler{
		writer:   NewEntryWriter(store),
		types:    NewEntryTypeResolver(store),
		describe: describe,
	}
}

// Reconcile moves the account's balance to target by writing one
// adjustment entry, or returns (nil, nil) when the balance already
// matches.
func (r *BalanceReconciler) Reconcile(ctx context.Context, account *Account, target decimal.Decimal) (*Entry, error) {
	delta := target.Sub(account.Balance)
	if delta.IsZero() {
		return nil, nil
	}

	kind := KindTransferIn
	descKey := DescTransferIn
	if delta.IsNegative() {
		kind = KindTransferOut
		descKey = DescTransferOut
	}

	entryType, err := r.types.Resolve(ctx, account.OwnerID, kind, "")
	if err != nil {
		return nil, err
	}

	return r.writer.Write(ctx, account, entryType, Entry{
		Amount:      delta.Abs(),
		Date:        Today(),
		Description: r.describe.Describe(descKey, BalanceAdjustmentName),
	})
}
