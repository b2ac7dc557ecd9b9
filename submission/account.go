package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quillfin/pocketbook/ledger"
)

// =============================================================================
// ACCOUNT SETUP - Create-or-find an account and state its balance
// =============================================================================

// AccountPayload is the input for both account setup and goal setup.
type AccountPayload struct {
	AccountName    string          `json:"account_name" validate:"required,max=100"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	SavingGoal     decimal.Decimal `json:"saving_goal"`
}

// AccountSetup resolves (or creates) the named account, records the
// saving goal, and reconciles the balance to the declared current
// balance with a synthetic adjustment entry.
type AccountSetup struct {
	submission
	deps    Deps
	owner   ledger.OwnerID
	payload AccountPayload
	check   ledger.EntryValidator
}

func NewAccountSetup(deps Deps, owner ledger.OwnerID, payload AccountPayload) *AccountSetup {
	return &AccountSetup{deps: deps, owner: owner, payload: payload}
}

func (s *AccountSetup) Validate() bool {
	s.reset()
	s.checkPayload(s.payload)
	s.check.NonNegative(s.errs, "saving_goal", s.payload.SavingGoal)
	return !s.errs.Any()
}

func (s *AccountSetup) Submit(ctx context.Context) (*ledger.Account, error) {
	if !s.Validate() {
		return nil, ledger.ErrInvalid
	}

	var account *ledger.Account
	err := s.deps.Store.WithTx(ctx, func(tx ledger.Store) error {
		var err error
		account, err = ledger.NewAccountResolver(tx).Resolve(ctx, s.owner, s.payload.AccountName)
		if err != nil {
			return err
		}

		account.SavingGoal = s.payload.SavingGoal
		if err := tx.UpdateAccount(ctx, account); err != nil {
			return err
		}

		_, err = ledger.NewBalanceReconciler(tx, s.deps.Describe).
			Reconcile(ctx, account, s.payload.CurrentBalance)
		return err
	})
	if err != nil {
		return nil, s.fail(s.deps.logger(), "account_setup", err)
	}
	return account, nil
}

// =============================================================================
// GOAL SETUP - Adjust an existing account's goal and balance
// =============================================================================

// GoalSetup is AccountSetup for an account that must already exist: it
// updates the saving goal and reconciles the balance, but an unknown
// account name is a field error rather than an implicit create.
type GoalSetup struct {
	submission
	deps    Deps
	owner   ledger.OwnerID
	payload AccountPayload
	check   ledger.EntryValidator
}

func NewGoalSetup(deps Deps, owner ledger.OwnerID, payload AccountPayload) *GoalSetup {
	return &GoalSetup{deps: deps, owner: owner, payload: payload}
}

func (s *GoalSetup) Validate() bool {
	s.reset()
	s.checkPayload(s.payload)
	s.check.NonNegative(s.errs, "saving_goal", s.payload.SavingGoal)
	return !s.errs.Any()
}

func (s *GoalSetup) Submit(ctx context.Context) (*ledger.Account, error) {
	if !s.Validate() {
		return nil, ledger.ErrInvalid
	}

	var account *ledger.Account
	err := s.deps.Store.WithTx(ctx, func(tx ledger.Store) error {
		var err error
		account, err = tx.FindAccountByName(ctx, s.owner, s.payload.AccountName)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ledger.Invalid("account_name", "is not one of your accounts")
			}
			return fmt.Errorf("find account: %w", err)
		}

		account.SavingGoal = s.payload.SavingGoal
		if err := tx.UpdateAccount(ctx, account); err != nil {
			return err
		}

		_, err = ledger.NewBalanceReconciler(tx, s.deps.Describe).
			Reconcile(ctx, account, s.payload.CurrentBalance)
		return err
	})
	if err != nil {
		return nil, s.fail(s.deps.logger(), "goal_setup", err)
	}
	return account, nil
}
