package storage

import (
	"database/sql"

	"budget-tracker/internal/models"
)

const goalColumns = "id, user_id, name, current_amount, target_amount, is_active, created_at"

func scanGoal(row rowScanner) (*models.SavingsGoal, error) {
	var (
		g       models.SavingsGoal
		current string
		target  string
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &current, &target, &g.IsActive, &g.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if g.CurrentAmount, err = decFromDB(current); err != nil {
		return nil, err
	}
	if g.TargetAmount, err = decFromDB(target); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateSavingsGoal inserts a new savings goal.
func (db *DB) CreateSavingsGoal(g *models.SavingsGoal) error {
	result, err := db.conn.Exec(
		"INSERT INTO savings_goals (user_id, name, current_amount, target_amount, is_active) VALUES (?, ?, ?, ?, ?)",
		g.UserID, g.Name, g.CurrentAmount.String(), g.TargetAmount.String(), g.IsActive,
	)
	if err != nil {
		return err
	}
	g.ID, err = result.LastInsertId()
	return err
}

// GetSavingsGoal retrieves one of the user's savings goals by ID.
func (db *DB) GetSavingsGoal(userID, id int64) (*models.SavingsGoal, error) {
	row := db.conn.QueryRow(
		"SELECT "+goalColumns+" FROM savings_goals WHERE id = ? AND user_id = ?",
		id, userID,
	)
	return scanGoal(row)
}

// ListSavingsGoals retrieves the user's savings goals, optionally only the
// active ones.
func (db *DB) ListSavingsGoals(userID int64, activeOnly bool) ([]models.SavingsGoal, error) {
	query := "SELECT " + goalColumns + " FROM savings_goals WHERE user_id = ?"
	if activeOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY id ASC"

	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// UpdateSavingsGoal updates a goal's definition fields.
func (db *DB) UpdateSavingsGoal(g *models.SavingsGoal) error {
	result, err := db.conn.Exec(
		"UPDATE savings_goals SET name = ?, current_amount = ?, target_amount = ?, is_active = ? WHERE id = ? AND user_id = ?",
		g.Name, g.CurrentAmount.String(), g.TargetAmount.String(), g.IsActive, g.ID, g.UserID,
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

// DeleteSavingsGoal removes a savings goal.
func (db *DB) DeleteSavingsGoal(userID, id int64) error {
	result, err := db.conn.Exec("DELETE FROM savings_goals WHERE id = ? AND user_id = ?", id, userID)
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
