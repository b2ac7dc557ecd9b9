package api

import (
	"github.com/quillfin/pocketbook/ledger"
)

// =============================================================================
// RESPONSE SHAPES
// =============================================================================
// Decimals are rendered as strings so clients never round-trip through
// floats.

type AccountDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Balance    string `json:"balance"`
	SavingGoal string `json:"saving_goal"`
}

func toAccountDTO(a *ledger.Account) AccountDTO {
	return AccountDTO{
		ID:         string(a.ID),
		Name:       a.Name,
		Balance:    a.Balance.String(),
		SavingGoal: a.SavingGoal.String(),
	}
}

type EntryDTO struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	EntryTypeID string `json:"entry_type_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Note        string `json:"note,omitempty"`
	DebtID      string `json:"debt_id,omitempty"`
}

func toEntryDTO(e *ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:          string(e.ID),
		AccountID:   string(e.AccountID),
		EntryTypeID: string(e.EntryTypeID),
		Amount:      e.Amount.String(),
		Date:        e.Date.Format("2006-01-02"),
		Description: e.Description,
		Note:        e.Note,
		DebtID:      string(e.DebtID),
	}
}

type DebtDTO struct {
	ID              string `json:"id"`
	ContactName     string `json:"contact_name"`
	Direction       string `json:"direction"`
	Status          string `json:"status"`
	TotalCommitted  string `json:"total_committed"`
	TotalReconciled string `json:"total_reconciled"`
	Note            string `json:"note,omitempty"`
}

func toDebtDTO(d *ledger.Debt) DebtDTO {
	return DebtDTO{
		ID:              string(d.ID),
		ContactName:     d.ContactName,
		Direction:       string(d.Direction),
		Status:          string(d.Status),
		TotalCommitted:  d.TotalCommitted.String(),
		TotalReconciled: d.TotalReconciled.String(),
		Note:            d.Note,
	}
}

// errorBody is the 422 response: the submission's field error collection.
type errorBody struct {
	Errors ledger.FieldErrors `json:"errors"`
}
