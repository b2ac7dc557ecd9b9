/*
batch.go - Onboarding batch account setup

Given N (account name, amount) rows, structurally invalid rows are
skipped silently; the batch fails validation only when zero rows
survive. Surviving rows are written in one atomic operation: accounts
deduplicated within the batch by normalized name (two rows naming the
same account share one Account and produce two entries), entry types
memoized per name, one "Initial balance" entry per row.
*/
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BatchRow struct {
	AccountName   string
	Amount        decimal.Decimal
	Date          time.Time // optional; defaults to today
	EntryTypeName string    // optional; defaults to the income category
}

// RowValid reports whether the row survives skipping: non-blank name,
// positive amount.
func (r BatchRow) RowValid() bool {
	return strings.TrimSpace(r.AccountName) != "" && r.Amount.IsPositive()
}

type BatchAccountSetup struct {
	writer   *EntryWriter
	accounts *AccountResolver
	types    *EntryTypeResolver
	describe Describer
	marker   OnboardingMarker // optional
}

func NewBatchAccountSetup(store Store, describe Describer, marker OnboardingMarker) *BatchAccountSetup {
	return &BatchAccountSetup{
		writer:   NewEntryWriter(store),
		accounts: NewAccountResolver(store),
		types:    NewEntryTypeResolver(store),
		describe: describe,
		marker:   marker,
	}
}

// Setup writes one account (deduplicated) and one entry per valid row.
// Runs inside the caller's atomic operation; advancing the onboarding
// marker is part of it, so a marker failure rolls everything back.
func (b *BatchAccountSetup) Setup(ctx context.Context, owner OwnerID, rows []BatchRow) ([]*Entry, error) {
	var valid []BatchRow
	for _, row := range rows {
		if row.RowValid() {
			valid = append(valid, row)
		}
	}
	if len(valid) == 0 {
		return nil, Invalid("rows", "needs at least one row with an account name and a positive amount")
	}

	resolved := map[string]*Account{}
	entries := make([]*Entry, 0, len(valid))
	for _, row := range valid {
		account, ok := resolved[NormalizeName(row.AccountName)]
		if !ok {
			var err error
			account, err = b.accounts.Resolve(ctx, owner, row.AccountName)
			if err != nil {
				return nil, err
			}
			resolved[NormalizeName(row.AccountName)] = account
		}

		entryType, err := b.types.Resolve(ctx, owner, KindIncome, row.EntryTypeName)
		if err != nil {
			return nil, err
		}

		date := row.Date
		if date.IsZero() {
			date = Today()
		}
		entry, err := b.writer.Write(ctx, account, entryType, Entry{
			Amount:      row.Amount,
			Date:        date,
			Description: b.describe.Describe(DescInitialSetup),
		})
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if b.marker != nil {
		if err := b.marker.MarkAccountsConfigured(ctx, owner); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
