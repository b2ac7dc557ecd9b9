package ledger

import "fmt"

// =============================================================================
// DESCRIBER - Injected description formatting
// =============================================================================

// Describer renders the human-readable descriptions the engine generates
// for synthetic entries. Injecting it keeps locale concerns out of the
// core; the default below is a fixed-format English fallback.
type Describer interface {
	Describe(key string, args ...any) string
}

// Template keys used by the writer components.
const (
	DescTransferOut   = "entry.transfer_out"
	DescTransferIn    = "entry.transfer_in"
	DescDebtLent      = "entry.debt_lent"
	DescDebtBorrowed  = "entry.debt_borrowed"
	DescReimbursement = "entry.reimbursement"
	DescRepayment     = "entry.repayment"
	DescInitialSetup  = "entry.initial_balance"
)

// BalanceAdjustmentName is the virtual counterparty reconciliation
// entries are written against.
const BalanceAdjustmentName = "Balance Adjustment"

type formatDescriber struct {
	templates map[string]string
}

// NewFormatDescriber returns the default fixed-format Describer.
func NewFormatDescriber() Describer {
	return &formatDescriber{templates: map[string]string{
		DescTransferOut:   "Transfer to %s",
		DescTransferIn:    "Transfer from %s",
		DescDebtLent:      "Lent to %s",
		DescDebtBorrowed:  "Borrowed from %s",
		DescReimbursement: "Reimbursement from %s",
		DescRepayment:     "Repayment to %s",
		DescInitialSetup:  "Initial balance",
	}}
}

func (d *formatDescriber) Describe(key string, args ...any) string {
	tmpl, ok := d.templates[key]
	if !ok {
		return key
	}
	return fmt.Sprintf(tmpl, args...)
}
