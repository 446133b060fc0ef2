package storage

import (
	"database/sql"

	"budget-tracker/internal/models"
)

const accountColumns = "id, user_id, name, account_type, balance, credit_limit, current_balance, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a           models.Account
		balance     string
		current     string
		creditLimit sql.NullString
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &balance, &creditLimit, &current, &a.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if a.Balance, err = decFromDB(balance); err != nil {
		return nil, err
	}
	if a.CurrentBalance, err = decFromDB(current); err != nil {
		return nil, err
	}
	if a.CreditLimit, err = nullDecFromDB(creditLimit); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount inserts a new account. Loan accounts must carry their
// LoanDetails, which are created in the same transaction.
func (db *DB) CreateAccount(a *models.Account) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO accounts (user_id, name, account_type, balance, credit_limit, current_balance) VALUES (?, ?, ?, ?, ?, ?)",
		a.UserID, a.Name, a.Kind, a.Balance.String(), nullDecToDB(a.CreditLimit), a.CurrentBalance.String(),
	)
	if err != nil {
		return err
	}
	if a.ID, err = result.LastInsertId(); err != nil {
		return err
	}

	if a.Loan != nil {
		a.Loan.AccountID = a.ID
		loanResult, err := tx.Exec(
			`INSERT INTO loan_details
				(account_id, original_amount, current_principal, interest_rate, loan_term_months,
				 monthly_payment, loan_start_date, next_payment_date, lender, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Loan.AccountID, a.Loan.OriginalAmount.String(), a.Loan.CurrentPrincipal.String(),
			a.Loan.InterestRate.String(), a.Loan.LoanTermMonths, a.Loan.MonthlyPayment.String(),
			a.Loan.LoanStartDate, a.Loan.NextPaymentDate, a.Loan.Lender, a.Loan.Notes,
		)
		if err != nil {
			return err
		}
		if a.Loan.ID, err = loanResult.LastInsertId(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetAccount retrieves one of the user's accounts, with loan details
// attached for loan accounts.
func (db *DB) GetAccount(userID, id int64) (*models.Account, error) {
	row := db.conn.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE id = ? AND user_id = ?",
		id, userID,
	)
	a, err := scanAccount(row)
	if err != nil {
		return nil, err
	}
	if a.Kind == models.Loan {
		if a.Loan, err = db.GetLoanDetails(a.ID); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ListAccounts retrieves all of the user's accounts, oldest first, with loan
// details attached for loan accounts.
func (db *DB) ListAccounts(userID int64) ([]models.Account, error) {
	rows, err := db.conn.Query(
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = ? ORDER BY id ASC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		if accounts[i].Kind == models.Loan {
			loan, err := db.GetLoanDetails(accounts[i].ID)
			if err != nil && err != sql.ErrNoRows {
				return nil, err
			}
			accounts[i].Loan = loan
		}
	}
	return accounts, nil
}

// UpdateAccount updates an account's editable fields.
func (db *DB) UpdateAccount(a *models.Account) error {
	result, err := db.conn.Exec(
		"UPDATE accounts SET name = ?, balance = ?, credit_limit = ?, current_balance = ? WHERE id = ? AND user_id = ?",
		a.Name, a.Balance.String(), nullDecToDB(a.CreditLimit), a.CurrentBalance.String(), a.ID, a.UserID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAccount removes an account together with its loan details, bills and
// transactions. Balances elsewhere are untouched; the account's history goes
// with it.
func (db *DB) DeleteAccount(userID, id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec("DELETE FROM accounts WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec("DELETE FROM loan_details WHERE account_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM bills WHERE account_id = ? AND user_id = ?", id, userID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM transactions WHERE account_id = ? AND user_id = ?", id, userID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetLoanDetails retrieves the loan details attached to an account.
func (db *DB) GetLoanDetails(accountID int64) (*models.LoanDetails, error) {
	row := db.conn.QueryRow(
		`SELECT id, account_id, original_amount, current_principal, interest_rate, loan_term_months,
			monthly_payment, loan_start_date, next_payment_date, lender, notes
		 FROM loan_details WHERE account_id = ?`,
		accountID,
	)

	var (
		d         models.LoanDetails
		original  string
		principal string
		rate      string
		payment   string
	)
	if err := row.Scan(&d.ID, &d.AccountID, &original, &principal, &rate, &d.LoanTermMonths,
		&payment, &d.LoanStartDate, &d.NextPaymentDate, &d.Lender, &d.Notes); err != nil {
		return nil, err
	}
	var err error
	if d.OriginalAmount, err = decFromDB(original); err != nil {
		return nil, err
	}
	if d.CurrentPrincipal, err = decFromDB(principal); err != nil {
		return nil, err
	}
	if d.InterestRate, err = decFromDB(rate); err != nil {
		return nil, err
	}
	if d.MonthlyPayment, err = decFromDB(payment); err != nil {
		return nil, err
	}
	return &d, nil
}
