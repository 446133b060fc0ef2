package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsGoal is a standalone savings tally. It is not connected to any
// account; moving money into a goal never touches an account balance.
type SavingsGoal struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PercentageComplete returns progress toward the target, clamped to
// [0, 100]. A non-positive target yields 0.
func (g *SavingsGoal) PercentageComplete() float64 {
	if g.TargetAmount.Sign() <= 0 {
		return 0
	}
	pct, _ := g.CurrentAmount.
		Div(g.TargetAmount).
		Mul(decimal.NewFromInt(100)).
		Float64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// RemainingAmount returns how much is still missing, floored at zero.
func (g *SavingsGoal) RemainingAmount() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.Sign() < 0 {
		return decimal.Zero
	}
	return remaining
}
