package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"budget-tracker/internal/models"
)

// AmortizationSummary is a derived, read-only view over a loan's static
// terms. Nothing in the system mutates the principal; these are estimates
// for display, not a full amortization schedule.
type AmortizationSummary struct {
	ProgressPercentage float64         `json:"progress_percentage"`
	RemainingPayments  int64           `json:"remaining_payments"`
	TotalInterestPaid  decimal.Decimal `json:"total_interest_paid_estimate"`
	PayoffDate         time.Time       `json:"payoff_date_estimate"`
}

// EstimateAmortization computes payoff progress from LoanDetails.
func EstimateAmortization(d *models.LoanDetails) AmortizationSummary {
	paidOff := d.OriginalAmount.Sub(d.CurrentPrincipal)

	var progress float64
	if d.OriginalAmount.Sign() > 0 {
		progress, _ = paidOff.
			Div(d.OriginalAmount).
			Mul(decimal.NewFromInt(100)).
			Float64()
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
	}

	var remaining int64
	if d.MonthlyPayment.Sign() > 0 {
		remaining = d.CurrentPrincipal.Div(d.MonthlyPayment).Floor().IntPart()
		if remaining < 0 {
			remaining = 0
		}
	}

	// Rough average-balance approximation: interest accrues on about half
	// the repaid amount over the life of the loan so far.
	interest := paidOff.
		Mul(d.InterestRate).
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(2))

	// Calendar-month arithmetic, not 30-day increments.
	payoff := d.NextPaymentDate.AddDate(0, int(remaining), 0)

	return AmortizationSummary{
		ProgressPercentage: progress,
		RemainingPayments:  remaining,
		TotalInterestPaid:  interest,
		PayoffDate:         payoff,
	}
}
