package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfin/pocketbook/ledger"
	"github.com/quillfin/pocketbook/ledger/store"
)

func newBatchSetup(mem *store.Memory, marker ledger.OnboardingMarker) *ledger.BatchAccountSetup {
	return ledger.NewBatchAccountSetup(mem, ledger.NewFormatDescriber(), marker)
}

// =============================================================================
// BATCH ACCOUNT SETUP TESTS - Skip-and-require, dedup, marker
// =============================================================================

func TestBatch_AllRowsInvalid_Rejected(t *testing.T) {
	// GIVEN: Only structurally invalid rows (blank name, zero amount)
	// THEN: The batch fails validation and nothing is written

	ctx := context.Background()
	mem := store.NewMemory()

	_, err := newBatchSetup(mem, nil).Setup(ctx, owner, []ledger.BatchRow{
		{AccountName: "", Amount: dec("100")},
		{AccountName: "Cash", Amount: dec("0")},
	})
	require.Error(t, err)

	verr, ok := ledger.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "needs at least one row with an account name and a positive amount", verr.Fields.First("rows"))

	accounts, err := mem.ListAccounts(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.Zero(t, entryCount(t, mem))
}

func TestBatch_InvalidRowsSkipped_ValidRowWritten(t *testing.T) {
	// GIVEN: One invalid row and one valid row
	// THEN: The invalid row is skipped silently; the valid row produces
	// one account and one opening entry

	ctx := context.Background()
	mem := store.NewMemory()

	entries, err := newBatchSetup(mem, nil).Setup(ctx, owner, []ledger.BatchRow{
		{AccountName: "", Amount: dec("100")},
		{AccountName: "Cash", Amount: dec("500"), Date: march(1)},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(dec("500")))
	assert.Equal(t, "Initial balance", entries[0].Description)

	accounts, err := mem.ListAccounts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Cash", accounts[0].Name)
	assert.True(t, accounts[0].Balance.Equal(dec("500")))
	requireBalanceInvariant(t, mem, &accounts[0])
}

func TestBatch_RowsDeduplicatedByNormalizedName(t *testing.T) {
	// GIVEN: Two rows naming the same account with different casing
	// THEN: One account, two entries, balance is the sum

	ctx := context.Background()
	mem := store.NewMemory()

	entries, err := newBatchSetup(mem, nil).Setup(ctx, owner, []ledger.BatchRow{
		{AccountName: "Wallet", Amount: dec("300"), Date: march(1)},
		{AccountName: " wallet ", Amount: dec("200"), Date: march(2)},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].AccountID, entries[1].AccountID)

	accounts, err := mem.ListAccounts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Balance.Equal(dec("500")))
}

func TestBatch_PerRowEntryTypes(t *testing.T) {
	// GIVEN: Rows with and without a named category
	// THEN: Named rows get their own income category; blank names fall
	// back to the default income one

	ctx := context.Background()
	mem := store.NewMemory()

	_, err := newBatchSetup(mem, nil).Setup(ctx, owner, []ledger.BatchRow{
		{AccountName: "Cash", Amount: dec("100"), EntryTypeName: "Opening"},
		{AccountName: "Bank", Amount: dec("200")},
	})
	require.NoError(t, err)

	types, err := mem.ListEntryTypes(ctx, owner)
	require.NoError(t, err)
	names := make([]string, 0, len(types))
	for _, et := range types {
		assert.Equal(t, ledger.KindIncome, et.Kind)
		names = append(names, et.Name)
	}
	assert.ElementsMatch(t, []string{"Opening", ledger.KindIncome.DefaultTypeName()}, names)
}

type recordingMarker struct {
	marked []ledger.OwnerID
	err    error
}

func (m *recordingMarker) MarkAccountsConfigured(_ context.Context, owner ledger.OwnerID) error {
	if m.err != nil {
		return m.err
	}
	m.marked = append(m.marked, owner)
	return nil
}

func TestBatch_MarkerAdvancedAfterWrites(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	marker := &recordingMarker{}

	_, err := newBatchSetup(mem, marker).Setup(ctx, owner, []ledger.BatchRow{
		{AccountName: "Cash", Amount: dec("100")},
	})
	require.NoError(t, err)
	assert.Equal(t, []ledger.OwnerID{owner}, marker.marked)
}

func TestBatch_MarkerFailure_RollsBackEverything(t *testing.T) {
	// GIVEN: A marker that fails after the rows were written
	// WHEN: Running the batch inside the store's atomic operation
	// THEN: The accounts and entries are rolled back with it

	ctx := context.Background()
	mem := store.NewMemory()
	marker := &recordingMarker{err: errInjected}

	err := mem.WithTx(ctx, func(tx ledger.Store) error {
		_, err := ledger.NewBatchAccountSetup(tx, ledger.NewFormatDescriber(), marker).
			Setup(ctx, owner, []ledger.BatchRow{
				{AccountName: "Cash", Amount: dec("100")},
			})
		return err
	})
	require.ErrorIs(t, err, errInjected)

	accounts, err := mem.ListAccounts(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.Zero(t, entryCount(t, mem))
}
