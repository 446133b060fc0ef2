package storage

import (
	"budget-tracker/internal/models"
)

const transactionColumns = "id, user_id, account_id, description, amount, category, transaction_type, date"

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t      models.Transaction
		amount string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Description, &amount, &t.Category, &t.Type, &t.Date); err != nil {
		return nil, err
	}
	var err error
	if t.Amount, err = decFromDB(amount); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTransaction retrieves one of the user's transactions by ID.
func (db *DB) GetTransaction(userID, id int64) (*models.Transaction, error) {
	row := db.conn.QueryRow(
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?",
		id, userID,
	)
	return scanTransaction(row)
}

// ListTransactions retrieves all of the user's transactions, newest first.
func (db *DB) ListTransactions(userID int64) ([]models.Transaction, error) {
	return db.queryTransactions(
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY date DESC",
		userID,
	)
}

// ListTransactionsByCategory retrieves the user's transactions in a
// category, newest first.
func (db *DB) ListTransactionsByCategory(userID int64, category string) ([]models.Transaction, error) {
	return db.queryTransactions(
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND category = ? ORDER BY date DESC",
		userID, category,
	)
}

func (db *DB) queryTransactions(query string, args ...any) ([]models.Transaction, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}
