package ledger_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfin/pocketbook/ledger"
	"github.com/quillfin/pocketbook/ledger/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const owner = ledger.OwnerID("user-1")

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func march(day int) time.Time {
	return time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
}

// requireBalanceInvariant asserts balance == sum of signed entry amounts.
func requireBalanceInvariant(t *testing.T, s ledger.Store, account *ledger.Account) {
	t.Helper()
	sum, err := s.SumSignedAmounts(context.Background(), account.OwnerID, account.ID)
	require.NoError(t, err)

	stored, err := s.FindAccountByID(context.Background(), account.OwnerID, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(sum),
		"balance %s != signed sum %s", stored.Balance, sum)
}

func entryCount(t *testing.T, s ledger.Store) int {
	t.Helper()
	entries, err := s.EntriesByOwner(context.Background(), owner)
	require.NoError(t, err)
	return len(entries)
}

// =============================================================================
// RESOLVER TESTS
// =============================================================================

func TestAccountResolver_CaseInsensitiveMatch(t *testing.T) {
	// GIVEN: An account named "Checking"
	// WHEN: Resolving " CHECKING " for the same owner
	// THEN: The existing account is reused, not duplicated

	ctx := context.Background()
	mem := store.NewMemory()
	r := ledger.NewAccountResolver(mem)

	first, err := r.Resolve(ctx, owner, "Checking")
	require.NoError(t, err)

	second, err := r.Resolve(ctx, owner, " CHECKING ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	accounts, err := mem.ListAccounts(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestAccountResolver_CreatesWithZeroBalance(t *testing.T) {
	ctx := context.Background()
	r := ledger.NewAccountResolver(store.NewMemory())

	acct, err := r.Resolve(ctx, owner, "  Wallet  ")
	require.NoError(t, err)
	assert.Equal(t, "Wallet", acct.Name, "stored name is trimmed")
	assert.True(t, acct.Balance.IsZero())
	assert.True(t, acct.SavingGoal.IsZero())
}

func TestAccountResolver_ScopedToOwner(t *testing.T) {
	// GIVEN: Owner A has "Cash"
	// WHEN: Owner B resolves "Cash"
	// THEN: Owner B gets their own account, never A's

	ctx := context.Background()
	mem := store.NewMemory()
	r := ledger.NewAccountResolver(mem)

	a, err := r.Resolve(ctx, "owner-a", "Cash")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, "owner-b", "Cash")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestEntryTypeResolver_SystemKindKeyedOnKindAlone(t *testing.T) {
	// GIVEN: A transfer_in type already resolved
	// WHEN: Resolving transfer_in again, even with a name
	// THEN: The same type comes back (system kinds ignore names)

	ctx := context.Background()
	r := ledger.NewEntryTypeResolver(store.NewMemory())

	first, err := r.Resolve(ctx, owner, ledger.KindTransferIn, "")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, owner, ledger.KindTransferIn, "Custom name")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Transfer in", first.Name)
}

func TestEntryTypeResolver_UserNamedCategories(t *testing.T) {
	ctx := context.Background()
	r := ledger.NewEntryTypeResolver(store.NewMemory())

	groceries, err := r.Resolve(ctx, owner, ledger.KindExpense, "Groceries")
	require.NoError(t, err)
	rent, err := r.Resolve(ctx, owner, ledger.KindExpense, "Rent")
	require.NoError(t, err)
	again, err := r.Resolve(ctx, owner, ledger.KindExpense, " groceries ")
	require.NoError(t, err)

	assert.NotEqual(t, groceries.ID, rent.ID)
	assert.Equal(t, groceries.ID, again.ID)
}

func TestEntryTypeResolver_BlankNameMeansDefaultCategory(t *testing.T) {
	// GIVEN: A user-named income category already exists
	// WHEN: Resolving income with a blank name
	// THEN: The default income category is created, never the named one reused

	ctx := context.Background()
	r := ledger.NewEntryTypeResolver(store.NewMemory())

	salary, err := r.Resolve(ctx, owner, ledger.KindIncome, "Salary")
	require.NoError(t, err)
	fallback, err := r.Resolve(ctx, owner, ledger.KindIncome, "")
	require.NoError(t, err)

	assert.NotEqual(t, salary.ID, fallback.ID)
	assert.Equal(t, "Income", fallback.Name)

	// Blank resolves to the same default category every time.
	again, err := r.Resolve(ctx, owner, ledger.KindIncome, "  ")
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, again.ID)
}

// =============================================================================
// ENTRY WRITER TESTS
// =============================================================================

func TestEntryWriter_MaintainsBalanceInvariant(t *testing.T) {
	// GIVEN: An account with no entries
	// WHEN: Writing an income of 120.50 and an expense of 20.50
	// THEN: The cached balance equals the signed sum, 100

	ctx := context.Background()
	mem := store.NewMemory()
	accounts := ledger.NewAccountResolver(mem)
	types := ledger.NewEntryTypeResolver(mem)
	writer := ledger.NewEntryWriter(mem)

	acct, err := accounts.Resolve(ctx, owner, "Checking")
	require.NoError(t, err)
	income, err := types.Resolve(ctx, owner, ledger.KindIncome, "Salary")
	require.NoError(t, err)
	expense, err := types.Resolve(ctx, owner, ledger.KindExpense, "Groceries")
	require.NoError(t, err)

	_, err = writer.Write(ctx, acct, income, ledger.Entry{
		Amount: dec("120.50"), Date: march(1), Description: "Salary",
	})
	require.NoError(t, err)
	_, err = writer.Write(ctx, acct, expense, ledger.Entry{
		Amount: dec("20.50"), Date: march(2), Description: "Groceries",
	})
	require.NoError(t, err)

	assert.True(t, acct.Balance.Equal(dec("100")), "got %s", acct.Balance)
	requireBalanceInvariant(t, mem, acct)
}

func TestEntryWriter_EntityLevelValidation(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	accounts := ledger.NewAccountResolver(mem)
	types := ledger.NewEntryTypeResolver(mem)
	writer := ledger.NewEntryWriter(mem)

	acct, err := accounts.Resolve(ctx, owner, "Checking")
	require.NoError(t, err)
	income, err := types.Resolve(ctx, owner, ledger.KindIncome, "")
	require.NoError(t, err)

	longDescription := make([]byte, ledger.MaxDescriptionLen+1)
	for i := range longDescription {
		longDescription[i] = 'x'
	}

	cases := []struct {
		name  string
		entry ledger.Entry
		field string
	}{
		{"zero amount", ledger.Entry{Amount: decimal.Zero, Date: march(1), Description: "ok"}, "amount"},
		{"blank description", ledger.Entry{Amount: dec("5"), Date: march(1), Description: "   "}, "description"},
		{"overlong description", ledger.Entry{Amount: dec("5"), Date: march(1), Description: string(longDescription)}, "description"},
		{"missing date", ledger.Entry{Amount: dec("5"), Description: "ok"}, "date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := writer.Write(ctx, acct, income, tc.entry)
			require.Error(t, err)
			verr, ok := ledger.AsValidation(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.NotEmpty(t, verr.Fields.First(tc.field))
		})
	}
}

func TestLengthLimitsCountCharactersNotBytes(t *testing.T) {
	// GIVEN: Multibyte values within the character limits but over them
	// in bytes
	// THEN: They pass; one character over the limit still fails

	var check ledger.EntryValidator

	within := strings.Repeat("é", ledger.MaxNameLen) // 2 bytes per rune
	fe := ledger.FieldErrors{}
	check.RequiredName(fe, "account_name", within)
	assert.False(t, fe.Any(), "got %s", fe)

	over := strings.Repeat("é", ledger.MaxNameLen+1)
	fe = ledger.FieldErrors{}
	check.RequiredName(fe, "account_name", over)
	assert.Equal(t, "must be 100 characters or fewer", fe.First("account_name"))

	ctx := context.Background()
	mem := store.NewMemory()
	acct, err := ledger.NewAccountResolver(mem).Resolve(ctx, owner, "Checking")
	require.NoError(t, err)
	income, err := ledger.NewEntryTypeResolver(mem).Resolve(ctx, owner, ledger.KindIncome, "")
	require.NoError(t, err)

	_, err = ledger.NewEntryWriter(mem).Write(ctx, acct, income, ledger.Entry{
		Amount:      dec("5"),
		Date:        march(1),
		Description: strings.Repeat("é", ledger.MaxDescriptionLen),
	})
	assert.NoError(t, err)
}

// =============================================================================
// BALANCE RECONCILER TESTS
// =============================================================================

func TestReconcile_PositiveDelta_WritesTransferIn(t *testing.T) {
	// GIVEN: An account with balance 0
	// WHEN: Reconciling to 250
	// THEN: One transfer_in adjustment entry of 250 is written

	ctx := context.Background()
	mem := store.NewMemory()
	acct, err := ledger.NewAccountResolver(mem).Resolve(ctx, owner, "Checking")
	require.NoError(t, err)

	entry, err := ledger.NewBalanceReconciler(mem, ledger.NewFormatDescriber()).
		Reconcile(ctx, acct, dec("250"))
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.True(t, entry.Amount.Equal(dec("250")))
	assert.Equal(t, "Transfer from Balance Adjustment", entry.Description)
	assert.True(t, acct.Balance.Equal(dec("250")))
	requireBalanceInvariant(t, mem, acct)
}

func TestReconcile_NegativeDelta_WritesTransferOut(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	describe := ledger.NewFormatDescriber()
	acct, err := ledger.NewAccountResolver(mem).Resolve(ctx, owner, "Checking")
	require.NoError(t, err)

	reconciler := ledger.NewBalanceReconciler(mem, describe)
	_, err = reconciler.Reconcile(ctx, acct, dec("300"))
	require.NoError(t, err)

	entry, err := reconciler.Reconcile(ctx, acct, dec("120"))
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.True(t, entry.Amount.Equal(dec("180")), "magnitude of the delta")
	assert.Equal(t, "Transfer to Balance Adjustment", entry.Description)
	assert.True(t, acct.Balance.Equal(dec("120")))
	requireBalanceInvariant(t, mem, acct)
}

func TestReconcile_ZeroDelta_IsNoOp(t *testing.T) {
	// GIVEN: An account already reconciled to 250
	// WHEN: Reconciling to 250 again
	// THEN: No new entry is written (resubmission is harmless)

	ctx := context.Background()
	mem := store.NewMemory()
	acct, err := ledger.NewAccountResolver(mem).Resolve(ctx, owner, "Checking")
	require.NoError(t, err)

	reconciler := ledger.NewBalanceReconciler(mem, ledger.NewFormatDescriber())
	_, err = reconciler.Reconcile(ctx, acct, dec("250"))
	require.NoError(t, err)
	before := entryCount(t, mem)

	entry, err := reconciler.Reconcile(ctx, acct, dec("250"))
	require.NoError(t, err)

	assert.Nil(t, entry)
	assert.Equal(t, before, entryCount(t, mem))
}
