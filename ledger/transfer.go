/*
transfer.go - Paired entries for account-to-account transfers

A transfer writes two linked entries inside the caller's atomic
operation: a transfer_out against the source and a transfer_in against
the destination, dated identically. The pair shares no transfer id; it
is linked by timing and description convention. Either write failing
aborts the whole operation, so no partial transfer is ever observable.
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TransferInput struct {
	FromAccountName string
	ToAccountName   string
	Amount          decimal.Decimal
	Date            time.Time
	Note            string
	Description     string // optional; defaults to the describer's convention
}

type TransferOrchestrator struct {
	writer   *EntryWriter
	accounts *AccountResolver
	types    *EntryTypeResolver
	describe Describer
	check    EntryValidator
}

func NewTransferOrchestrator(store Store, describe Describer) *TransferOrchestrator {
	return &TransferOrchestrator{
		writer:   NewEntryWriter(store),
		accounts: NewAccountResolver(store),
		types:    NewEntryTypeResolver(store),
		describe: describe,
	}
}

// Transfer resolves both accounts and the two system entry types, then
// writes the outbound and inbound entries. Returns (out, in).
func (t *TransferOrchestrator) Transfer(ctx context.Context, owner OwnerID, in TransferInput) (*Entry, *Entry, error) {
	fe := FieldErrors{}
	t.check.PositiveAmount(fe, "amount", in.Amount)
	t.check.RequiredName(fe, "from_account_name", in.FromAccountName)
	t.check.RequiredName(fe, "to_account_name", in.ToAccountName)
	t.check.RequiredDate(fe, "date", in.Date)
	t.check.DistinctAccounts(fe, "to_account_name", in.FromAccountName, in.ToAccountName)
	if fe.Any() {
		return nil, nil, &ValidationError{Fields: fe}
	}

	from, err := t.accounts.Resolve(ctx, owner, in.FromAccountName)
	if err != nil {
		return nil, nil, err
	}
	to, err := t.accounts.Resolve(ctx, owner, in.ToAccountName)
	if err != nil {
		return nil, nil, err
	}

	outType, err := t.types.Resolve(ctx, owner, KindTransferOut, "")
	if err != nil {
		return nil, nil, err
	}
	inType, err := t.types.Resolve(ctx, owner, KindTransferIn, "")
	if err != nil {
		return nil, nil, err
	}

	outDesc := in.Description
	if outDesc == "" {
		outDesc = t.describe.Describe(DescTransferOut, to.Name)
	}
	inDesc := in.Description
	if inDesc == "" {
		inDesc = t.describe.Describe(DescTransferIn, from.Name)
	}

	outEntry, err := t.writer.Write(ctx, from, outType, Entry{
		Amount:      in.Amount,
		Date:        in.Date,
		Description: outDesc,
		Note:        in.Note,
	})
	if err != nil {
		return nil, nil, err
	}

	inEntry, err := t.writer.Write(ctx, to, inType, Entry{
		Amount:      in.Amount,
		Date:        in.Date,
		Description: inDesc,
		Note:        in.Note,
	})
	if err != nil {
		return nil, nil, err
	}

	return outEntry, inEntry, nil
}
