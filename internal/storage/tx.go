package storage

import (
	"database/sql"
	"errors"

	"budget-tracker/internal/ledger"
	"budget-tracker/internal/models"
)

// Tx implements ledger.Tx over one sql transaction. Every lookup is scoped
// to a user; a missing or foreign-owned row surfaces as
// *ledger.NotFoundError so the engine never learns which of the two it was.
type Tx struct {
	tx *sql.Tx
}

func notFound(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &ledger.NotFoundError{Entity: entity}
	}
	return err
}

// AccountForUpdate loads an account for mutation within this transaction.
func (t *Tx) AccountForUpdate(userID, accountID int64) (*models.Account, error) {
	row := t.tx.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE id = ? AND user_id = ?",
		accountID, userID,
	)
	a, err := scanAccount(row)
	if err != nil {
		return nil, notFound("account", err)
	}
	return a, nil
}

// SaveAccountBalances persists both balance fields of an account.
func (t *Tx) SaveAccountBalances(a *models.Account) error {
	_, err := t.tx.Exec(
		"UPDATE accounts SET balance = ?, current_balance = ? WHERE id = ?",
		a.Balance.String(), a.CurrentBalance.String(), a.ID,
	)
	return err
}

// TransactionByID loads one of the user's transactions.
func (t *Tx) TransactionByID(userID, txnID int64) (*models.Transaction, error) {
	row := t.tx.QueryRow(
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?",
		txnID, userID,
	)
	txn, err := scanTransaction(row)
	if err != nil {
		return nil, notFound("transaction", err)
	}
	return txn, nil
}

// InsertTransaction persists a new transaction and fills in its ID.
func (t *Tx) InsertTransaction(txn *models.Transaction) error {
	result, err := t.tx.Exec(
		"INSERT INTO transactions (user_id, account_id, description, amount, category, transaction_type, date) VALUES (?, ?, ?, ?, ?, ?, ?)",
		txn.UserID, txn.AccountID, txn.Description, txn.Amount.String(), txn.Category, txn.Type, txn.Date,
	)
	if err != nil {
		return err
	}
	txn.ID, err = result.LastInsertId()
	return err
}

// UpdateTransaction persists an edited transaction.
func (t *Tx) UpdateTransaction(txn *models.Transaction) error {
	_, err := t.tx.Exec(
		"UPDATE transactions SET account_id = ?, description = ?, amount = ?, category = ?, transaction_type = ?, date = ? WHERE id = ?",
		txn.AccountID, txn.Description, txn.Amount.String(), txn.Category, txn.Type, txn.Date, txn.ID,
	)
	return err
}

// DeleteTransaction removes a transaction row.
func (t *Tx) DeleteTransaction(txnID int64) error {
	_, err := t.tx.Exec("DELETE FROM transactions WHERE id = ?", txnID)
	return err
}

// BillByID loads one of the user's bills.
func (t *Tx) BillByID(userID, billID int64) (*models.Bill, error) {
	row := t.tx.QueryRow(
		"SELECT "+billColumns+" FROM bills WHERE id = ? AND user_id = ?",
		billID, userID,
	)
	b, err := scanBill(row)
	if err != nil {
		return nil, notFound("bill", err)
	}
	return b, nil
}

// SaveBillPaymentState persists only the four payment-state fields.
func (t *Tx) SaveBillPaymentState(b *models.Bill) error {
	var paidDate sql.NullTime
	if b.PaidDate != nil {
		paidDate = sql.NullTime{Time: *b.PaidDate, Valid: true}
	}
	var month, year sql.NullInt64
	if b.LastPaidMonth != nil {
		month = sql.NullInt64{Int64: int64(*b.LastPaidMonth), Valid: true}
	}
	if b.LastPaidYear != nil {
		year = sql.NullInt64{Int64: int64(*b.LastPaidYear), Valid: true}
	}
	_, err := t.tx.Exec(
		"UPDATE bills SET is_paid = ?, paid_date = ?, last_paid_month = ?, last_paid_year = ? WHERE id = ?",
		b.IsPaid, paidDate, month, year, b.ID,
	)
	return err
}

// ClearBillPaymentState resets payment state on all the user's bills and
// reports how many were touched.
func (t *Tx) ClearBillPaymentState(userID int64) (int64, error) {
	result, err := t.tx.Exec(
		"UPDATE bills SET is_paid = 0, paid_date = NULL, last_paid_month = NULL, last_paid_year = NULL WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SavingsGoalByID loads one of the user's savings goals.
func (t *Tx) SavingsGoalByID(userID, goalID int64) (*models.SavingsGoal, error) {
	row := t.tx.QueryRow(
		"SELECT "+goalColumns+" FROM savings_goals WHERE id = ? AND user_id = ?",
		goalID, userID,
	)
	g, err := scanGoal(row)
	if err != nil {
		return nil, notFound("savings goal", err)
	}
	return g, nil
}

// SaveSavingsGoalAmount persists a goal's current amount.
func (t *Tx) SaveSavingsGoalAmount(g *models.SavingsGoal) error {
	_, err := t.tx.Exec(
		"UPDATE savings_goals SET current_amount = ? WHERE id = ?",
		g.CurrentAmount.String(), g.ID,
	)
	return err
}
