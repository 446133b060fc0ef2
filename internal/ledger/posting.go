package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"budget-tracker/internal/models"
)

// balanceRule encodes how a posting of a given direction moves the
// authoritative balance field of one account kind.
type balanceRule interface {
	apply(a *models.Account, amount decimal.Decimal, t models.TransactionType)
}

// assetRule: income adds to the funds available, expense subtracts.
type assetRule struct{}

func (assetRule) apply(a *models.Account, amount decimal.Decimal, t models.TransactionType) {
	if t == models.Income {
		a.Balance = a.Balance.Add(amount)
	} else {
		a.Balance = a.Balance.Sub(amount)
	}
}

// creditRule inverts the asset convention: CurrentBalance is debt, so an
// expense (a charge) increases it and income (a payment) reduces it.
type creditRule struct{}

func (creditRule) apply(a *models.Account, amount decimal.Decimal, t models.TransactionType) {
	if t == models.Expense {
		a.CurrentBalance = a.CurrentBalance.Add(amount)
	} else {
		a.CurrentBalance = a.CurrentBalance.Sub(amount)
	}
}

func ruleFor(kind models.AccountKind) (balanceRule, error) {
	switch kind {
	case models.Checking, models.Savings, models.Investment:
		return assetRule{}, nil
	case models.Credit:
		return creditRule{}, nil
	case models.Loan:
		// Loan balances live in LoanDetails; payments are modeled as bills
		// posted against a funding account.
		return nil, &ValidationError{Field: "account_id", Message: "transactions cannot be posted to a loan account"}
	default:
		return nil, &ValidationError{Field: "account_type", Message: fmt.Sprintf("unknown account type %q", kind)}
	}
}

// ApplyPosting applies the monetary effect of a transaction with the given
// magnitude and direction to the account's authoritative balance field.
func ApplyPosting(a *models.Account, amount decimal.Decimal, t models.TransactionType) error {
	rule, err := ruleFor(a.Kind)
	if err != nil {
		return err
	}
	rule.apply(a, amount, t)
	return nil
}

// ReversePosting undoes a prior posting. Reapplying with the opposite
// direction is the exact algebraic inverse of ApplyPosting.
func ReversePosting(a *models.Account, amount decimal.Decimal, t models.TransactionType) error {
	return ApplyPosting(a, amount, t.Opposite())
}
