package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxBillDay is the largest allowed due day. Days are capped at 28 so every
// month of every year has the due date.
const MaxBillDay = 28

// Bill is a recurring monthly obligation. Payment state is per calendar
// month: IsPaid alone is meaningless without LastPaidMonth/LastPaidYear, so
// always go through PaidForMonth.
type Bill struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	AccountID     int64           `json:"account_id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	DayOfMonth    int             `json:"day_of_month"`
	IsActive      bool            `json:"is_active"`
	IsPaid        bool            `json:"is_paid"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	LastPaidMonth *int            `json:"last_paid_month,omitempty"`
	LastPaidYear  *int            `json:"last_paid_year,omitempty"`
	// LoanAccountID marks a bill generated for a loan account's monthly
	// payment. Informational only; it does not change the ledger math.
	LoanAccountID *int64    `json:"loan_account_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaidForMonth reports whether the bill has been paid for the given calendar
// month. This is the only correct way to read the payment-state fields.
func (b *Bill) PaidForMonth(year int, month time.Month) bool {
	return b.IsPaid &&
		b.LastPaidMonth != nil && *b.LastPaidMonth == int(month) &&
		b.LastPaidYear != nil && *b.LastPaidYear == year
}

// DueDate returns the bill's due date in the given month. The day is clamped
// to MaxBillDay, which input validation already guarantees.
func (b *Bill) DueDate(year int, month time.Month) time.Time {
	day := b.DayOfMonth
	if day > MaxBillDay {
		day = MaxBillDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Overdue reports whether the bill's due date for the current month has
// passed without a payment for that month.
func (b *Bill) Overdue(now time.Time) bool {
	day := b.DayOfMonth
	if day > MaxBillDay {
		day = MaxBillDay
	}
	due := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
	return due.Before(now) && !b.PaidForMonth(now.Year(), now.Month())
}
