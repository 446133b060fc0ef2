package storage

// CategoryUsage counts how often a category appears across the user's
// transactions and bills.
type CategoryUsage struct {
	Name             string `json:"name"`
	TransactionCount int    `json:"transaction_count"`
	BillCount        int    `json:"bill_count"`
}

// ListCategoryUsage returns every category the user has used, with usage
// counts from transactions and bills.
func (db *DB) ListCategoryUsage(userID int64) ([]CategoryUsage, error) {
	rows, err := db.conn.Query(`
		SELECT category,
			SUM(CASE WHEN source = 't' THEN n ELSE 0 END) AS transaction_count,
			SUM(CASE WHEN source = 'b' THEN n ELSE 0 END) AS bill_count
		FROM (
			SELECT category, 't' AS source, COUNT(*) AS n FROM transactions WHERE user_id = ? GROUP BY category
			UNION ALL
			SELECT category, 'b' AS source, COUNT(*) AS n FROM bills WHERE user_id = ? GROUP BY category
		)
		WHERE category != ''
		GROUP BY category
		ORDER BY transaction_count + bill_count DESC, category ASC
	`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usage []CategoryUsage
	for rows.Next() {
		var u CategoryUsage
		if err := rows.Scan(&u.Name, &u.TransactionCount, &u.BillCount); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// RenameCategory renames a category on all the user's transactions and
// bills. Ledger math is unaffected.
func (db *DB) RenameCategory(userID int64, oldName, newName string) error {
	return db.reassignCategory(userID, oldName, newName)
}

// RemoveCategory retires a category, moving its transactions and bills into
// mergeInto, or "Uncategorized" when mergeInto is empty.
func (db *DB) RemoveCategory(userID int64, name, mergeInto string) error {
	if mergeInto == "" {
		mergeInto = "Uncategorized"
	}
	return db.reassignCategory(userID, name, mergeInto)
}

func (db *DB) reassignCategory(userID int64, from, to string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE transactions SET category = ? WHERE user_id = ? AND category = ?", to, userID, from); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE bills SET category = ? WHERE user_id = ? AND category = ?", to, userID, from); err != nil {
		return err
	}
	return tx.Commit()
}

// Counts holds table totals for the metrics endpoint.
type Counts struct {
	Users        int `json:"users"`
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
	Bills        int `json:"bills"`
	ActiveBills  int `json:"active_bills"`
	SavingsGoals int `json:"savings_goals"`
}

// CountAll returns row counts across all tables.
func (db *DB) CountAll() (*Counts, error) {
	var c Counts
	err := db.conn.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM accounts),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COUNT(*) FROM bills),
			(SELECT COUNT(*) FROM bills WHERE is_active = 1),
			(SELECT COUNT(*) FROM savings_goals)
	`).Scan(&c.Users, &c.Accounts, &c.Transactions, &c.Bills, &c.ActiveBills, &c.SavingsGoals)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
