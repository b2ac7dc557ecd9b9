package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfin/pocketbook/ledger"
	"github.com/quillfin/pocketbook/ledger/store"
)

const owner = ledger.OwnerID("user-1")

func account(name string) *ledger.Account {
	return &ledger.Account{
		ID:         ledger.NewAccountID(),
		OwnerID:    owner,
		Name:       name,
		Balance:    decimal.Zero,
		SavingGoal: decimal.Zero,
		CreatedAt:  ledger.Today(),
	}
}

func TestMemory_DuplicateNormalizedNameRejected(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.InsertAccount(ctx, account("Cash")))
	err := mem.InsertAccount(ctx, account(" CASH "))
	assert.ErrorIs(t, err, ledger.ErrDuplicateName)
}

func TestMemory_FindReturnsCopies(t *testing.T) {
	// GIVEN: A stored account
	// WHEN: Mutating the value a find returned
	// THEN: The stored row is unaffected until UpdateAccount is called

	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.InsertAccount(ctx, account("Cash")))

	found, err := mem.FindAccountByName(ctx, owner, "Cash")
	require.NoError(t, err)
	found.Balance = decimal.NewFromInt(999)

	again, err := mem.FindAccountByName(ctx, owner, "Cash")
	require.NoError(t, err)
	assert.True(t, again.Balance.IsZero())
}

func TestMemory_WithTx_RestoresSnapshotOnError(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.InsertAccount(ctx, account("Kept")))
	boom := errors.New("boom")

	err := mem.WithTx(ctx, func(tx ledger.Store) error {
		if err := tx.InsertAccount(ctx, account("Doomed")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	accounts, err := mem.ListAccounts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Kept", accounts[0].Name)
}

func TestMemory_WithTx_CommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	err := mem.WithTx(ctx, func(tx ledger.Store) error {
		return tx.InsertAccount(ctx, account("Cash"))
	})
	require.NoError(t, err)

	_, err = mem.FindAccountByName(ctx, owner, "Cash")
	assert.NoError(t, err)
}
