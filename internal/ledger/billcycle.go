package ledger

import (
	"context"
	"fmt"
	"time"

	"budget-tracker/internal/models"
)

// BillToggleResult reports the outcome of a paid-state toggle.
type BillToggleResult struct {
	Bill *models.Bill
	// Paid is the bill's state for the toggle month after the call.
	Paid bool
	// Transaction is the generated payment entry when transitioning to
	// paid, nil when transitioning to unpaid.
	Transaction *models.Transaction
}

// ToggleBillPaid flips a bill's payment state for the month containing now.
//
// Unpaid -> paid records the payment-state fields and posts a generated
// expense transaction for the bill amount against the bill's account.
//
// Paid -> unpaid only clears the payment-state fields. The previously
// generated transaction and its balance effect are intentionally left in
// place; un-toggling is a bookkeeping correction, not a refund.
func (e *Engine) ToggleBillPaid(ctx context.Context, userID, billID int64, now time.Time) (*BillToggleResult, error) {
	var result *BillToggleResult
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		bill, err := tx.BillByID(userID, billID)
		if err != nil {
			return err
		}

		if bill.PaidForMonth(now.Year(), now.Month()) {
			bill.IsPaid = false
			bill.PaidDate = nil
			bill.LastPaidMonth = nil
			bill.LastPaidYear = nil
			if err := tx.SaveBillPaymentState(bill); err != nil {
				return err
			}
			result = &BillToggleResult{Bill: bill, Paid: false}
			return nil
		}

		paidDate := now
		month := int(now.Month())
		year := now.Year()
		bill.IsPaid = true
		bill.PaidDate = &paidDate
		bill.LastPaidMonth = &month
		bill.LastPaidYear = &year

		account, err := tx.AccountForUpdate(userID, bill.AccountID)
		if err != nil {
			return err
		}
		if err := ApplyPosting(account, bill.Amount, models.Expense); err != nil {
			return err
		}
		txn := &models.Transaction{
			UserID:      userID,
			AccountID:   bill.AccountID,
			Description: fmt.Sprintf("Bill Payment: %s", bill.Name),
			Amount:      bill.Amount,
			Category:    bill.Category,
			Type:        models.Expense,
			Date:        now,
		}
		if err := tx.InsertTransaction(txn); err != nil {
			return err
		}
		if err := tx.SaveAccountBalances(account); err != nil {
			return err
		}
		if err := tx.SaveBillPaymentState(bill); err != nil {
			return err
		}
		result = &BillToggleResult{Bill: bill, Paid: true, Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResetAllBills clears the payment-state fields on every bill the user owns,
// for all months. Generated transactions and account balances are untouched.
// It returns the number of bills reset.
func (e *Engine) ResetAllBills(ctx context.Context, userID int64) (int64, error) {
	var reset int64
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		reset, err = tx.ClearBillPaymentState(userID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return reset, nil
}
