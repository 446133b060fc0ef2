package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind classifies an account and decides which balance field is
// authoritative for it.
type AccountKind string

const (
	// Checking, Savings and Investment are asset-like: Balance holds the
	// funds available, positive meaning money the user has.
	Checking   AccountKind = "checking"
	Savings    AccountKind = "savings"
	Investment AccountKind = "investment"
	// Credit accounts track debt in CurrentBalance: spending increases it,
	// payments reduce it.
	Credit AccountKind = "credit"
	// Loan accounts carry no balance of their own; the attached LoanDetails
	// principal is the balance.
	Loan AccountKind = "loan"
)

// Valid reports whether k is one of the known account kinds.
func (k AccountKind) Valid() bool {
	switch k {
	case Checking, Savings, Investment, Credit, Loan:
		return true
	}
	return false
}

// AssetLike reports whether the account's Balance field is authoritative.
func (k AccountKind) AssetLike() bool {
	switch k {
	case Checking, Savings, Investment:
		return true
	}
	return false
}

// Account represents a financial account. Exactly one balance representation
// is authoritative per kind: Balance for asset-like accounts, CurrentBalance
// (amount owed) for credit accounts, and the LoanDetails principal for loan
// accounts. The other fields are ignored for that kind.
type Account struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	Name           string           `json:"name"`
	Kind           AccountKind      `json:"account_type"`
	Balance        decimal.Decimal  `json:"balance"`
	CreditLimit    *decimal.Decimal `json:"credit_limit,omitempty"`
	CurrentBalance decimal.Decimal  `json:"current_balance"`
	CreatedAt      time.Time        `json:"created_at"`
	Loan           *LoanDetails     `json:"loan,omitempty"`
}

// LoanDetails holds the static terms of a loan account. It is owned
// exclusively by one Account and destroyed with it.
type LoanDetails struct {
	ID               int64           `json:"id"`
	AccountID        int64           `json:"account_id"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	CurrentPrincipal decimal.Decimal `json:"current_principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"` // annual percent
	LoanTermMonths   int             `json:"loan_term_months"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	LoanStartDate    time.Time       `json:"loan_start_date"`
	NextPaymentDate  time.Time       `json:"next_payment_date"`
	Lender           string          `json:"lender,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}
