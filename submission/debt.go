package submission

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillfin/pocketbook/ledger"
)

// =============================================================================
// DEBT SETUP - Create or update a peer debt
// =============================================================================

type DebtPayload struct {
	DebtID          ledger.DebtID    `json:"debt_id"` // empty creates a new debt
	ContactName     string           `json:"contact_name" validate:"required,max=100"`
	Direction       ledger.Direction `json:"direction" validate:"required,oneof=lent borrowed"`
	TotalCommitted  decimal.Decimal  `json:"total_committed"`
	TotalReconciled decimal.Decimal  `json:"total_reconciled"`
	Note            string           `json:"note"`
	AccountName     string           `json:"account_name" validate:"omitempty,max=100"`
	Date            time.Time        `json:"date"`
}

type DebtSetup struct {
	submission
	deps    Deps
	owner   ledger.OwnerID
	payload DebtPayload
	check   ledger.EntryValidator
}

func NewDebtSetup(deps Deps, owner ledger.OwnerID, payload DebtPayload) *DebtSetup {
	return &DebtSetup{deps: deps, owner: owner, payload: payload}
}

func (s *DebtSetup) Validate() bool {
	s.reset()
	s.checkPayload(s.payload)
	s.check.PositiveAmount(s.errs, "total_committed", s.payload.TotalCommitted)
	s.check.NonNegative(s.errs, "total_reconciled", s.payload.TotalReconciled)
	s.check.ReconciledWithinCommitted(s.errs, "total_reconciled",
		s.payload.TotalCommitted, s.payload.TotalReconciled)
	return !s.errs.Any()
}

func (s *DebtSetup) Submit(ctx context.Context) (*ledger.Debt, error) {
	if !s.Validate() {
		return nil, ledger.ErrInvalid
	}

	var debt *ledger.Debt
	err := s.deps.Store.WithTx(ctx, func(tx ledger.Store) error {
		var err error
		debt, err = ledger.NewDebtLedger(tx, s.deps.Describe).Record(ctx, s.owner, ledger.DebtInput{
			DebtID:          s.payload.DebtID,
			ContactName:     s.payload.ContactName,
			Direction:       s.payload.Direction,
			TotalCommitted:  s.payload.TotalCommitted,
			TotalReconciled: s.payload.TotalReconciled,
			Note:            s.payload.Note,
			AccountName:     s.payload.AccountName,
			Date:            s.payload.Date,
		})
		if errors.Is(err, ledger.ErrNotFound) {
			return ledger.Invalid("debt_id", "is not one of your debts")
		}
		return err
	})
	if err != nil {
		return nil, s.fail(s.deps.logger(), "debt_setup", err)
	}
	return debt, nil
}
