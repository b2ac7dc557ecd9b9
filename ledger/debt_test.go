package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfin/pocketbook/ledger"
	"github.com/quillfin/pocketbook/ledger/store"
)

func newDebtLedger(mem *store.Memory) *ledger.DebtLedger {
	return ledger.NewDebtLedger(mem, ledger.NewFormatDescriber())
}

// =============================================================================
// DEBT CREATION TESTS
// =============================================================================

func TestDebt_Create_WritesCommittedAndReconciledEntries(t *testing.T) {
	// GIVEN: No debt yet
	// WHEN: Recording 1000 lent to Alice, 200 already reconciled, via Cash
	// THEN: The debt row exists and exactly two entries are written (1000 out, 200 in)

	ctx := context.Background()
	mem := store.NewMemory()

	debt, err := newDebtLedger(mem).Record(ctx, owner, ledger.DebtInput{
		ContactName:     "Alice",
		Direction:       ledger.DirectionLent,
		TotalCommitted:  dec("1000"),
		TotalReconciled: dec("200"),
		AccountName:     "Cash",
		Date:            march(1),
	})
	require.NoError(t, err)

	assert.Equal(t, ledger.DebtOngoing, debt.Status)
	assert.True(t, debt.Outstanding().Equal(dec("800")))

	entries, err := mem.EntriesByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Equal(dec("1000")))
	assert.Equal(t, "Lent to Alice", entries[0].Description)
	assert.True(t, entries[1].Amount.Equal(dec("200")))
	assert.Equal(t, "Reimbursement from Alice", entries[1].Description)
	for _, e := range entries {
		assert.Equal(t, debt.ID, e.DebtID)
	}

	// Lent 1000, got 200 back: the account is down 800.
	cash, err := mem.FindAccountByName(ctx, owner, "Cash")
	require.NoError(t, err)
	assert.True(t, cash.Balance.Equal(dec("-800")), "got %s", cash.Balance)
	requireBalanceInvariant(t, mem, cash)
}

func TestDebt_Create_WithoutAccount_BookkeepingOnly(t *testing.T) {
	// GIVEN: A debt recorded with no account name
	// THEN: The debt row exists but no cash-side entries do

	ctx := context.Background()
	mem := store.NewMemory()

	debt, err := newDebtLedger(mem).Record(ctx, owner, ledger.DebtInput{
		ContactName:    "Bob",
		Direction:      ledger.DirectionBorrowed,
		TotalCommitted: dec("500"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, debt.ID)
	assert.Zero(t, entryCount(t, mem))
}

func TestDebt_Create_ReconciledOverflowRejected(t *testing.T) {
	// GIVEN: total_reconciled greater than total_committed
	// THEN: Validation fails before any write

	ctx := context.Background()
	mem := store.NewMemory()

	_, err := newDebtLedger(mem).Record(ctx, owner, ledger.DebtInput{
		ContactName:     "Alice",
		Direction:       ledger.DirectionLent,
		TotalCommitted:  dec("100"),
		TotalReconciled: dec("150"),
		AccountName:     "Cash",
	})
	require.Error(t, err)

	verr, ok := ledger.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "cannot exceed the total committed", verr.Fields.First("total_reconciled"))

	debts, err := mem.ListDebts(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, debts)
}

// =============================================================================
// DEBT UPDATE TESTS - Monotonic totals, difference entries
// =============================================================================

func TestDebt_Update_LoweredCommittedRejected(t *testing.T) {
	// GIVEN: A debt at {committed: 1000, reconciled: 0}
	// WHEN: Updating to {committed: 800, reconciled: 0}
	// THEN: Validation fails; nothing changes

	ctx := context.Background()
	mem := store.NewMemory()
	dl := newDebtLedger(mem)

	debt, err := dl.Record(ctx, owner, ledger.DebtInput{
		ContactName:    "Alice",
		Direction:      ledger.DirectionLent,
		TotalCommitted: dec("1000"),
	})
	require.NoError(t, err)

	_, err = dl.Record(ctx, owner, ledger.DebtInput{
		DebtID:         debt.ID,
		ContactName:    "Alice",
		Direction:      ledger.DirectionLent,
		TotalCommitted: dec("800"),
	})
	require.Error(t, err)

	verr, ok := ledger.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "cannot be lower than the recorded total", verr.Fields.First("total_committed"))

	unchanged, err := mem.FindDebtByID(ctx, owner, debt.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.TotalCommitted.Equal(dec("1000")))
}

func TestDebt_Update_WritesOnlyDifferences(t *testing.T) {
	// GIVEN: A debt at {committed: 1000, reconciled: 0} with entries via Cash
	// WHEN: Updating to {committed: 1500, reconciled: 300}
	// THEN: Exactly two new entries sized 500 and 300 are written

	ctx := context.Background()
	mem := store.NewMemory()
	dl := newDebtLedger(mem)

	debt, err := dl.Record(ctx, owner, ledger.DebtInput{
		ContactName:    "Alice",
		Direction:      ledger.DirectionLent,
		TotalCommitted: dec("1000"),
		AccountName:    "Cash",
		Date:           march(1),
	})
	require.NoError(t, err)
	require.Equal(t, 1, entryCount(t, mem))

	updated, err := dl.Record(ctx, owner, ledger.DebtInput{
		DebtID:          debt.ID,
		ContactName:     "Alice",
		Direction:       ledger.DirectionLent,
		TotalCommitted:  dec("1500"),
		TotalReconciled: dec("300"),
		AccountName:     "Cash",
		Date:            march(5),
	})
	require.NoError(t, err)

	assert.True(t, updated.TotalCommitted.Equal(dec("1500")))
	assert.True(t, updated.TotalReconciled.Equal(dec("300")))

	entries, err := mem.EntriesByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, entries, 3, "one opening entry plus the two differences")
	assert.True(t, entries[1].Amount.Equal(dec("500")))
	assert.True(t, entries[2].Amount.Equal(dec("300")))

	cash, err := mem.FindAccountByName(ctx, owner, "Cash")
	require.NoError(t, err)
	requireBalanceInvariant(t, mem, cash)
}

func TestDebt_Update_ZeroDifferencesWriteNothing(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	dl := newDebtLedger(mem)

	debt, err := dl.Record(ctx, owner, ledger.DebtInput{
		ContactName:    "Alice",
		Direction:      ledger.DirectionLent,
		TotalCommitted: dec("1000"),
		AccountName:    "Cash",
	})
	require.NoError(t, err)
	before := entryCount(t, mem)

	_, err = dl.Record(ctx, owner, ledger.DebtInput{
		DebtID:         debt.ID,
		ContactName:    "Alice",
		Direction:      ledger.DirectionLent,
		TotalCommitted: dec("1000"),
	})
	require.NoError(t, err)
	assert.Equal(t, before, entryCount(t, mem))
}

func TestDebt_FullyReconciled_MarkedPaid(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	dl := newDebtLedger(mem)

	debt, err := dl.Record(ctx, owner, ledger.DebtInput{
		ContactName:    "Alice",
		Direction:      ledger.DirectionLent,
		TotalCommitted: dec("1000"),
	})
	require.NoError(t, err)

	updated, err := dl.Record(ctx, owner, ledger.DebtInput{
		DebtID:          debt.ID,
		ContactName:     "Alice",
		Direction:       ledger.DirectionLent,
		TotalCommitted:  dec("1000"),
		TotalReconciled: dec("1000"),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.DebtPaid, updated.Status)
}

// =============================================================================
// REIMBURSEMENT TESTS
// =============================================================================

func TestDebt_Reimburse_BumpsReconciledAndWritesEntry(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	dl := newDebtLedger(mem)

	debt, err := dl.Record(ctx, owner, ledger.DebtInput{
		ContactName:    "Alice",
		Direction:      ledger.DirectionLent,
		TotalCommitted: dec("1000"),
		AccountName:    "Cash",
	})
	require.NoError(t, err)

	entry, err := dl.Reimburse(ctx, owner, debt.ID, "Cash", dec("400"), march(10), "")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Amount.Equal(dec("400")))
	assert.Equal(t, "Reimbursement from Alice", entry.Description)

	updated, err := mem.FindDebtByID(ctx, owner, debt.ID)
	require.NoError(t, err)
	assert.True(t, updated.TotalReconciled.Equal(dec("400")))
}

func TestDebt_Reimburse_OverflowRejected(t *testing.T) {
	// GIVEN: 600 outstanding on a 1000 debt
	// WHEN: Reimbursing 700
	// THEN: Validation fails; the reconciled total never exceeds committed

	ctx := context.Background()
	mem := store.NewMemory()
	dl := newDebtLedger(mem)

	debt, err := dl.Record(ctx, owner, ledger.DebtInput{
		ContactName:     "Alice",
		Direction:       ledger.DirectionLent,
		TotalCommitted:  dec("1000"),
		TotalReconciled: dec("400"),
	})
	require.NoError(t, err)

	_, err = dl.Reimburse(ctx, owner, debt.ID, "", dec("700"), march(10), "")
	require.Error(t, err)

	verr, ok := ledger.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "exceeds the outstanding amount", verr.Fields.First("amount"))

	unchanged, err := mem.FindDebtByID(ctx, owner, debt.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.TotalReconciled.Equal(dec("400")))
}

func TestDebt_BorrowedDirection_Descriptions(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	_, err := newDebtLedger(mem).Record(ctx, owner, ledger.DebtInput{
		ContactName:     "Carol",
		Direction:       ledger.DirectionBorrowed,
		TotalCommitted:  dec("300"),
		TotalReconciled: dec("100"),
		AccountName:     "Cash",
	})
	require.NoError(t, err)

	entries, err := mem.EntriesByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Borrowed from Carol", entries[0].Description)
	assert.Equal(t, "Repayment to Carol", entries[1].Description)
}
