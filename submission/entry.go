package submission

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillfin/pocketbook/ledger"
)

// =============================================================================
// ENTRY SUBMISSION - One orchestrator, three entry flavors
// =============================================================================

// EntryKind is the closed union of entry flavors a submission can carry.
// Dispatch is an explicit switch, never string-built method names.
type EntryKind string

const (
	EntryRegular  EntryKind = "regular"
	EntryTransfer EntryKind = "transfer"
	EntryDebt     EntryKind = "debt"
)

type EntryPayload struct {
	Kind            EntryKind        `json:"kind" validate:"required,oneof=regular transfer debt"`
	AccountName     string           `json:"account_name" validate:"omitempty,max=100"`
	FromAccountName string           `json:"from_account_name" validate:"omitempty,max=100"`
	ToAccountName   string           `json:"to_account_name" validate:"omitempty,max=100"`
	Amount          decimal.Decimal  `json:"amount"`
	Date            time.Time        `json:"date"`
	EntryTypeName   string           `json:"entry_type_name" validate:"omitempty,max=100"`
	Description     string           `json:"description" validate:"omitempty,max=255"`
	Note            string           `json:"note"`
	AccountID       ledger.AccountID `json:"account_id"`
	DebtID          ledger.DebtID    `json:"debt_id"`
}

// EntrySubmissionResult carries the entries one submission created: one
// for regular and debt entries, the linked pair for transfers.
type EntrySubmissionResult struct {
	Entry   *ledger.Entry
	Partner *ledger.Entry // transfer only: the inbound half
}

type EntrySubmission struct {
	submission
	deps    Deps
	owner   ledger.OwnerID
	payload EntryPayload
	check   ledger.EntryValidator
}

func NewEntrySubmission(deps Deps, owner ledger.OwnerID, payload EntryPayload) *EntrySubmission {
	return &EntrySubmission{deps: deps, owner: owner, payload: payload}
}

func (s *EntrySubmission) Validate() bool {
	s.reset()
	s.checkPayload(s.payload)

	switch s.payload.Kind {
	case EntryRegular:
		// Sign picks the category: positive is income, negative expense.
		s.check.NonzeroAmount(s.errs, "amount", s.payload.Amount)
		if s.payload.AccountID == "" {
			s.check.RequiredName(s.errs, "account_name", s.payload.AccountName)
		}
		s.check.RequiredDate(s.errs, "date", s.payload.Date)
	case EntryTransfer:
		s.check.PositiveAmount(s.errs, "amount", s.payload.Amount)
		s.check.RequiredName(s.errs, "from_account_name", s.payload.FromAccountName)
		s.check.RequiredName(s.errs, "to_account_name", s.payload.ToAccountName)
		s.check.RequiredDate(s.errs, "date", s.payload.Date)
		s.check.DistinctAccounts(s.errs, "to_account_name", s.payload.FromAccountName, s.payload.ToAccountName)
	case EntryDebt:
		s.check.PositiveAmount(s.errs, "amount", s.payload.Amount)
		if s.payload.DebtID == "" {
			s.addError("debt_id", "is required")
		}
		s.check.RequiredDate(s.errs, "date", s.payload.Date)
	}

	return !s.errs.Any()
}

func (s *EntrySubmission) Submit(ctx context.Context) (*EntrySubmissionResult, error) {
	if !s.Validate() {
		return nil, ledger.ErrInvalid
	}

	var result EntrySubmissionResult
	err := s.deps.Store.WithTx(ctx, func(tx ledger.Store) error {
		switch s.payload.Kind {
		case EntryRegular:
			return s.submitRegular(ctx, tx, &result)
		case EntryTransfer:
			return s.submitTransfer(ctx, tx, &result)
		case EntryDebt:
			return s.submitDebt(ctx, tx, &result)
		default:
			return ledger.Invalid("kind", "must be one of: regular, transfer, debt")
		}
	})
	if err != nil {
		return nil, s.fail(s.deps.logger(), "entry_submission", err)
	}
	return &result, nil
}

func (s *EntrySubmission) submitRegular(ctx context.Context, tx ledger.Store, result *EntrySubmissionResult) error {
	account, err := s.resolveAccount(ctx, tx)
	if err != nil {
		return err
	}

	kind := ledger.KindIncome
	if s.payload.Amount.IsNegative() {
		kind = ledger.KindExpense
	}
	entryType, err := ledger.NewEntryTypeResolver(tx).Resolve(ctx, s.owner, kind, s.payload.EntryTypeName)
	if err != nil {
		return err
	}

	description := s.payload.Description
	if description == "" {
		description = entryType.Name
	}

	entry, err := ledger.NewEntryWriter(tx).Write(ctx, account, entryType, ledger.Entry{
		Amount:      s.payload.Amount.Abs(),
		Date:        s.payload.Date,
		Description: description,
		Note:        s.payload.Note,
	})
	if err != nil {
		return err
	}
	result.Entry = entry
	return nil
}

func (s *EntrySubmission) submitTransfer(ctx context.Context, tx ledger.Store, result *EntrySubmissionResult) error {
	out, in, err := ledger.NewTransferOrchestrator(tx, s.deps.Describe).Transfer(ctx, s.owner, ledger.TransferInput{
		FromAccountName: s.payload.FromAccountName,
		ToAccountName:   s.payload.ToAccountName,
		Amount:          s.payload.Amount,
		Date:            s.payload.Date,
		Note:            s.payload.Note,
		Description:     s.payload.Description,
	})
	if err != nil {
		return err
	}
	result.Entry = out
	result.Partner = in
	return nil
}

func (s *EntrySubmission) submitDebt(ctx context.Context, tx ledger.Store, result *EntrySubmissionResult) error {
	entry, err := ledger.NewDebtLedger(tx, s.deps.Describe).Reimburse(ctx, s.owner,
		s.payload.DebtID, s.payload.AccountName, s.payload.Amount, s.payload.Date, s.payload.Note)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return ledger.Invalid("debt_id", "is not one of your debts")
		}
		return err
	}
	result.Entry = entry
	return nil
}

func (s *EntrySubmission) resolveAccount(ctx context.Context, tx ledger.Store) (*ledger.Account, error) {
	if s.payload.AccountID != "" {
		account, err := tx.FindAccountByID(ctx, s.owner, s.payload.AccountID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return nil, ledger.Invalid("account_id", "is not one of your accounts")
			}
			return nil, err
		}
		return account, nil
	}
	return ledger.NewAccountResolver(tx).Resolve(ctx, s.owner, s.payload.AccountName)
}
