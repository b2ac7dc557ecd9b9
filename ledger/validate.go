package ledger

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY VALIDATOR - Pure field rules, no I/O
// =============================================================================

// EntryValidator holds the field rules shared by every entry-producing
// submission. Each method appends messages to the given collection; rules
// never touch the store, so orchestrators can run them before opening the
// atomic operation.
type EntryValidator struct{}

// PositiveAmount requires amount > 0.
func (EntryValidator) PositiveAmount(fe FieldErrors, field string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		fe.Add(field, "must be greater than zero")
	}
}

// NonzeroAmount requires amount != 0; sign is meaningful to the caller.
func (EntryValidator) NonzeroAmount(fe FieldErrors, field string, amount decimal.Decimal) {
	if amount.IsZero() {
		fe.Add(field, "must not be zero")
	}
}

// NonNegative requires amount >= 0.
func (EntryValidator) NonNegative(fe FieldErrors, field string, amount decimal.Decimal) {
	if amount.IsNegative() {
		fe.Add(field, "must not be negative")
	}
}

// RequiredName requires a non-blank name within the length limit.
func (EntryValidator) RequiredName(fe FieldErrors, field, name string) {
	if strings.TrimSpace(name) == "" {
		fe.Add(field, "is required")
		return
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		fe.Add(field, "must be 100 characters or fewer")
	}
}

// RequiredDate requires a non-zero date.
func (EntryValidator) RequiredDate(fe FieldErrors, field string, date time.Time) {
	if date.IsZero() {
		fe.Add(field, "is required")
	}
}

// DistinctAccounts rejects transfers whose endpoints normalize to the
// same account. The message lands on the destination field.
func (EntryValidator) DistinctAccounts(fe FieldErrors, field, from, to string) {
	if NormalizeName(from) != "" && NormalizeName(from) == NormalizeName(to) {
		fe.Add(field, "transfer requires two distinct accounts")
	}
}

// ReconciledWithinCommitted enforces total_reconciled <= total_committed
// against the submitted values.
func (EntryValidator) ReconciledWithinCommitted(fe FieldErrors, field string, committed, reconciled decimal.Decimal) {
	if reconciled.GreaterThan(committed) {
		fe.Add(field, "cannot exceed the total committed")
	}
}

// =============================================================================
// ENTITY-LEVEL ENTRY RULES
// =============================================================================

// validateEntry checks the invariants of a fully-built entry just before
// it is persisted. Violations come back as entity-level field errors for
// the orchestrator to promote.
func validateEntry(e Entry) FieldErrors {
	fe := FieldErrors{}
	if !e.Amount.IsPositive() {
		fe.Add("amount", "must be greater than zero")
	}
	if strings.TrimSpace(e.Description) == "" {
		fe.Add("description", "is required")
	} else if utf8.RuneCountInString(e.Description) > MaxDescriptionLen {
		fe.Add("description", "must be 255 characters or fewer")
	}
	if e.Date.IsZero() {
		fe.Add("date", "is required")
	}
	return fe
}
