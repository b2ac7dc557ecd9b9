package submission

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillfin/pocketbook/ledger"
)

// =============================================================================
// BATCH ACCOUNT SETUP - Onboarding: N accounts and opening balances
// =============================================================================

type BatchRowPayload struct {
	AccountName   string          `json:"account_name" validate:"omitempty,max=100"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	EntryTypeName string          `json:"entry_type_name" validate:"omitempty,max=100"`
}

type BatchPayload struct {
	Rows []BatchRowPayload `json:"rows" validate:"dive"`
}

// BatchSetup writes one account (deduplicated by normalized name) and
// one opening entry per structurally valid row, atomically, and advances
// the onboarding marker on success. Invalid rows are skipped, not
// errors; a batch with zero valid rows fails validation.
type BatchSetup struct {
	submission
	deps    Deps
	owner   ledger.OwnerID
	payload BatchPayload
}

func NewBatchSetup(deps Deps, owner ledger.OwnerID, payload BatchPayload) *BatchSetup {
	return &BatchSetup{deps: deps, owner: owner, payload: payload}
}

func (s *BatchSetup) rows() []ledger.BatchRow {
	rows := make([]ledger.BatchRow, 0, len(s.payload.Rows))
	for _, r := range s.payload.Rows {
		rows = append(rows, ledger.BatchRow{
			AccountName:   r.AccountName,
			Amount:        r.Amount,
			Date:          r.Date,
			EntryTypeName: r.EntryTypeName,
		})
	}
	return rows
}

func (s *BatchSetup) Validate() bool {
	s.reset()
	s.checkPayload(s.payload)

	anyValid := false
	for _, r := range s.rows() {
		if r.RowValid() {
			anyValid = true
			break
		}
	}
	if !anyValid {
		s.addError("rows", "needs at least one row with an account name and a positive amount")
	}
	return !s.errs.Any()
}

func (s *BatchSetup) Submit(ctx context.Context) ([]*ledger.Entry, error) {
	if !s.Validate() {
		return nil, ledger.ErrInvalid
	}

	var entries []*ledger.Entry
	err := s.deps.Store.WithTx(ctx, func(tx ledger.Store) error {
		var err error
		entries, err = ledger.NewBatchAccountSetup(tx, s.deps.Describe, s.deps.Marker).
			Setup(ctx, s.owner, s.rows())
		return err
	})
	if err != nil {
		return nil, s.fail(s.deps.logger(), "batch_account_setup", err)
	}
	return entries, nil
}
