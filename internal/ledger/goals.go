package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"budget-tracker/internal/models"
)

// AddGoalFunds moves amount into a savings goal. Goals are a standalone
// tally: no account balance is involved.
func (e *Engine) AddGoalFunds(ctx context.Context, userID, goalID int64, amount decimal.Decimal) (*models.SavingsGoal, error) {
	if amount.Sign() <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	var goal *models.SavingsGoal
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		goal, err = tx.SavingsGoalByID(userID, goalID)
		if err != nil {
			return err
		}
		goal.CurrentAmount = goal.CurrentAmount.Add(amount)
		return tx.SaveSavingsGoalAmount(goal)
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// WithdrawGoalFunds takes amount out of a savings goal. The withdrawal is
// bounded by the goal's current amount.
func (e *Engine) WithdrawGoalFunds(ctx context.Context, userID, goalID int64, amount decimal.Decimal) (*models.SavingsGoal, error) {
	if amount.Sign() <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	var goal *models.SavingsGoal
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		goal, err = tx.SavingsGoalByID(userID, goalID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(goal.CurrentAmount) {
			return &ValidationError{Field: "amount", Message: "cannot withdraw more than current amount"}
		}
		goal.CurrentAmount = goal.CurrentAmount.Sub(amount)
		return tx.SaveSavingsGoalAmount(goal)
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}
