package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"budget-tracker/internal/models"
)

// Store is the persistence collaborator. RunInTx executes fn inside one
// storage transaction: either everything fn did is committed, or nothing is.
// A serialization failure surfaces as *ConflictError.
type Store interface {
	RunInTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the unit-of-work surface the engine mutates through. Implementations
// must scope every lookup to the given user and report missing or
// foreign-owned rows as *NotFoundError.
type Tx interface {
	AccountForUpdate(userID, accountID int64) (*models.Account, error)
	SaveAccountBalances(a *models.Account) error

	TransactionByID(userID, txnID int64) (*models.Transaction, error)
	InsertTransaction(t *models.Transaction) error
	UpdateTransaction(t *models.Transaction) error
	DeleteTransaction(txnID int64) error

	BillByID(userID, billID int64) (*models.Bill, error)
	SaveBillPaymentState(b *models.Bill) error
	ClearBillPaymentState(userID int64) (int64, error)

	SavingsGoalByID(userID, goalID int64) (*models.SavingsGoal, error)
	SaveSavingsGoalAmount(g *models.SavingsGoal) error
}

// Engine keeps account balances consistent with the transactions attributed
// to them. Every operation runs as a single storage transaction: a reader
// never observes a ledger entry without its balance effect, or vice versa.
type Engine struct {
	store Store
}

// NewEngine creates an Engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// TransactionInput carries the validated fields for a new transaction.
type TransactionInput struct {
	AccountID   int64
	Description string
	Amount      decimal.Decimal
	Category    string
	Type        models.TransactionType
	Date        time.Time
}

func (in *TransactionInput) validate() error {
	if in.Amount.Sign() <= 0 {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if !in.Type.Valid() {
		return &ValidationError{Field: "transaction_type", Message: "must be income or expense"}
	}
	return nil
}

// CreateTransaction posts a new transaction and applies its balance effect
// to the target account atomically.
func (e *Engine) CreateTransaction(ctx context.Context, userID int64, in TransactionInput) (*models.Transaction, *models.Account, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var (
		txn     *models.Transaction
		account *models.Account
	)
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		account, err = tx.AccountForUpdate(userID, in.AccountID)
		if err != nil {
			return err
		}
		if err := ApplyPosting(account, in.Amount, in.Type); err != nil {
			return err
		}
		txn = &models.Transaction{
			UserID:      userID,
			AccountID:   in.AccountID,
			Description: in.Description,
			Amount:      in.Amount,
			Category:    in.Category,
			Type:        in.Type,
			Date:        in.Date,
		}
		if err := tx.InsertTransaction(txn); err != nil {
			return err
		}
		return tx.SaveAccountBalances(account)
	})
	if err != nil {
		return nil, nil, err
	}
	return txn, account, nil
}

// TransactionUpdate holds the fields of an edit; nil means "unchanged".
type TransactionUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	Category    *string
	Type        *models.TransactionType
	Date        *time.Time
	AccountID   *int64
}

// UpdateTransaction edits a transaction so that the end balances are exactly
// what they would be had the old transaction never existed and the new one
// been created directly: the old posting is reversed on the old account, and
// the new posting is applied to the (possibly different) target account.
func (e *Engine) UpdateTransaction(ctx context.Context, userID, txnID int64, upd TransactionUpdate) (*models.Transaction, error) {
	var txn *models.Transaction
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		txn, err = tx.TransactionByID(userID, txnID)
		if err != nil {
			return err
		}

		oldAmount := txn.Amount
		oldType := txn.Type
		oldAccountID := txn.AccountID

		if upd.Description != nil {
			txn.Description = *upd.Description
		}
		if upd.Amount != nil {
			txn.Amount = *upd.Amount
		}
		if upd.Category != nil {
			txn.Category = *upd.Category
		}
		if upd.Type != nil {
			txn.Type = *upd.Type
		}
		if upd.Date != nil {
			txn.Date = *upd.Date
		}
		if upd.AccountID != nil {
			txn.AccountID = *upd.AccountID
		}

		if txn.Amount.Sign() <= 0 {
			return &ValidationError{Field: "amount", Message: "amount must be positive"}
		}
		if !txn.Type.Valid() {
			return &ValidationError{Field: "transaction_type", Message: "must be income or expense"}
		}

		oldAccount, err := tx.AccountForUpdate(userID, oldAccountID)
		if err != nil {
			return err
		}
		if err := ReversePosting(oldAccount, oldAmount, oldType); err != nil {
			return err
		}

		target := oldAccount
		if txn.AccountID != oldAccountID {
			target, err = tx.AccountForUpdate(userID, txn.AccountID)
			if err != nil {
				// Moving to an account the user does not own is an input
				// problem, not a missing entity on this transaction.
				var nf *NotFoundError
				if errors.As(err, &nf) {
					return &ValidationError{Field: "account_id", Message: "target account not found"}
				}
				return err
			}
		}
		if err := ApplyPosting(target, txn.Amount, txn.Type); err != nil {
			return err
		}

		if err := tx.SaveAccountBalances(oldAccount); err != nil {
			return err
		}
		if target != oldAccount {
			if err := tx.SaveAccountBalances(target); err != nil {
				return err
			}
		}
		return tx.UpdateTransaction(txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect on
// the owning account atomically.
func (e *Engine) DeleteTransaction(ctx context.Context, userID, txnID int64) error {
	return e.store.RunInTx(ctx, func(tx Tx) error {
		txn, err := tx.TransactionByID(userID, txnID)
		if err != nil {
			return err
		}
		account, err := tx.AccountForUpdate(userID, txn.AccountID)
		if err != nil {
			return err
		}
		if err := ReversePosting(account, txn.Amount, txn.Type); err != nil {
			return err
		}
		if err := tx.SaveAccountBalances(account); err != nil {
			return err
		}
		return tx.DeleteTransaction(txnID)
	})
}
