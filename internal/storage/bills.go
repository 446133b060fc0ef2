package storage

import (
	"database/sql"

	"budget-tracker/internal/models"
)

const billColumns = "id, user_id, account_id, name, amount, category, day_of_month, is_active, is_paid, paid_date, last_paid_month, last_paid_year, loan_account_id, created_at"

func scanBill(row rowScanner) (*models.Bill, error) {
	var (
		b        models.Bill
		amount   string
		paidDate sql.NullTime
		month    sql.NullInt64
		year     sql.NullInt64
		loanID   sql.NullInt64
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.AccountID, &b.Name, &amount, &b.Category, &b.DayOfMonth,
		&b.IsActive, &b.IsPaid, &paidDate, &month, &year, &loanID, &b.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if b.Amount, err = decFromDB(amount); err != nil {
		return nil, err
	}
	if paidDate.Valid {
		b.PaidDate = &paidDate.Time
	}
	if month.Valid {
		m := int(month.Int64)
		b.LastPaidMonth = &m
	}
	if year.Valid {
		y := int(year.Int64)
		b.LastPaidYear = &y
	}
	if loanID.Valid {
		id := loanID.Int64
		b.LoanAccountID = &id
	}
	return &b, nil
}

// CreateBill inserts a new bill. New bills start unpaid.
func (db *DB) CreateBill(b *models.Bill) error {
	result, err := db.conn.Exec(
		"INSERT INTO bills (user_id, account_id, name, amount, category, day_of_month, is_active, loan_account_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		b.UserID, b.AccountID, b.Name, b.Amount.String(), b.Category, b.DayOfMonth, b.IsActive, nullInt64ToDB(b.LoanAccountID),
	)
	if err != nil {
		return err
	}
	b.ID, err = result.LastInsertId()
	return err
}

// GetBill retrieves one of the user's bills by ID.
func (db *DB) GetBill(userID, id int64) (*models.Bill, error) {
	row := db.conn.QueryRow(
		"SELECT "+billColumns+" FROM bills WHERE id = ? AND user_id = ?",
		id, userID,
	)
	return scanBill(row)
}

// ListBills retrieves all of the user's bills ordered by due day.
func (db *DB) ListBills(userID int64) ([]models.Bill, error) {
	return db.queryBills(
		"SELECT "+billColumns+" FROM bills WHERE user_id = ? ORDER BY day_of_month ASC",
		userID,
	)
}

// ListBillsByCategory retrieves the user's bills in a category ordered by
// due day.
func (db *DB) ListBillsByCategory(userID int64, category string) ([]models.Bill, error) {
	return db.queryBills(
		"SELECT "+billColumns+" FROM bills WHERE user_id = ? AND category = ? ORDER BY day_of_month ASC",
		userID, category,
	)
}

func (db *DB) queryBills(query string, args ...any) ([]models.Bill, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

// UpdateBill updates a bill's definition fields. Payment state is owned by
// the ledger engine and not touched here.
func (db *DB) UpdateBill(b *models.Bill) error {
	result, err := db.conn.Exec(
		"UPDATE bills SET name = ?, amount = ?, category = ?, day_of_month = ?, is_active = ?, account_id = ? WHERE id = ? AND user_id = ?",
		b.Name, b.Amount.String(), b.Category, b.DayOfMonth, b.IsActive, b.AccountID, b.ID, b.UserID,
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

// DeleteBill removes a bill. Transactions it generated stay in the ledger.
func (db *DB) DeleteBill(userID, id int64) error {
	result, err := db.conn.Exec("DELETE FROM bills WHERE id = ? AND user_id = ?", id, userID)
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

func nullInt64ToDB(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
