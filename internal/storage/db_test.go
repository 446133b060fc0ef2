package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/ledger"
	"budget-tracker/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DBTestSuite provides a test suite for database operations
type DBTestSuite struct {
	suite.Suite
	db   *DB
	user *models.User
}

// SetupTest runs before each test
func (suite *DBTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db

	user, err := db.CreateUser("testuser", "test@example.com", "hash")
	require.NoError(suite.T(), err, "failed to create test user")
	suite.user = user
}

// TearDownTest runs after each test
func (suite *DBTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *DBTestSuite) newAccount(name string, kind models.AccountKind, balance string) *models.Account {
	account := &models.Account{
		UserID:  suite.user.ID,
		Name:    name,
		Kind:    kind,
		Balance: dec(balance),
	}
	require.NoError(suite.T(), suite.db.CreateAccount(account))
	return account
}

func (suite *DBTestSuite) insertTransaction(accountID int64, amount, category string) *models.Transaction {
	txn := &models.Transaction{
		UserID:    suite.user.ID,
		AccountID: accountID,
		Amount:    dec(amount),
		Category:  category,
		Type:      models.Expense,
		Date:      time.Now(),
	}
	err := suite.db.RunInTx(context.Background(), func(tx ledger.Tx) error {
		return tx.InsertTransaction(txn)
	})
	require.NoError(suite.T(), err)
	return txn
}

func (suite *DBTestSuite) TestCreateAndGetAccount() {
	limit := dec("5000")
	account := &models.Account{
		UserID:         suite.user.ID,
		Name:           "Visa",
		Kind:           models.Credit,
		CreditLimit:    &limit,
		CurrentBalance: dec("123.45"),
	}
	require.NoError(suite.T(), suite.db.CreateAccount(account))
	assert.NotZero(suite.T(), account.ID)

	got, err := suite.db.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Visa", got.Name)
	assert.Equal(suite.T(), models.Credit, got.Kind)
	assert.Equal(suite.T(), "123.45", got.CurrentBalance.String())
	require.NotNil(suite.T(), got.CreditLimit)
	assert.Equal(suite.T(), "5000", got.CreditLimit.String())
	assert.Nil(suite.T(), got.Loan)
}

func (suite *DBTestSuite) TestGetAccount_ScopedToUser() {
	account := suite.newAccount("Checking", models.Checking, "100")

	other, err := suite.db.CreateUser("other", "other@example.com", "hash")
	require.NoError(suite.T(), err)

	_, err = suite.db.GetAccount(other.ID, account.ID)
	assert.Error(suite.T(), err, "accounts must not leak across users")
}

func (suite *DBTestSuite) TestCreateLoanAccountWithDetails() {
	account := &models.Account{
		UserID: suite.user.ID,
		Name:   "Mortgage",
		Kind:   models.Loan,
		Loan: &models.LoanDetails{
			OriginalAmount:   dec("250000"),
			CurrentPrincipal: dec("240000"),
			InterestRate:     dec("3.5"),
			LoanTermMonths:   360,
			MonthlyPayment:   dec("1122.61"),
			LoanStartDate:    time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
			NextPaymentDate:  time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			Lender:           "First Bank",
		},
	}
	require.NoError(suite.T(), suite.db.CreateAccount(account))
	assert.NotZero(suite.T(), account.Loan.ID)
	assert.Equal(suite.T(), account.ID, account.Loan.AccountID)

	got, err := suite.db.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), got.Loan)
	assert.Equal(suite.T(), "240000", got.Loan.CurrentPrincipal.String())
	assert.Equal(suite.T(), "1122.61", got.Loan.MonthlyPayment.String())
	assert.Equal(suite.T(), "First Bank", got.Loan.Lender)
}

func (suite *DBTestSuite) TestListAccounts() {
	suite.newAccount("Checking", models.Checking, "100")
	suite.newAccount("Savings", models.Savings, "2500")

	accounts, err := suite.db.ListAccounts(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), accounts, 2)

	// Oldest first.
	assert.Equal(suite.T(), "Checking", accounts[0].Name)
	assert.Equal(suite.T(), "Savings", accounts[1].Name)
}

func (suite *DBTestSuite) TestUpdateAccount() {
	account := suite.newAccount("Checking", models.Checking, "100")

	account.Name = "Everyday Checking"
	account.Balance = dec("250.75")
	require.NoError(suite.T(), suite.db.UpdateAccount(account))

	got, err := suite.db.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Everyday Checking", got.Name)
	assert.Equal(suite.T(), "250.75", got.Balance.String())
}

func (suite *DBTestSuite) TestUpdateAccount_WrongUser() {
	account := suite.newAccount("Checking", models.Checking, "100")

	other, err := suite.db.CreateUser("other", "other@example.com", "hash")
	require.NoError(suite.T(), err)

	account.UserID = other.ID
	account.Name = "Hijacked"
	err = suite.db.UpdateAccount(account)
	assert.Error(suite.T(), err)
}

func (suite *DBTestSuite) TestDeleteAccount_CascadesHistory() {
	account := suite.newAccount("Checking", models.Checking, "100")
	txn := suite.insertTransaction(account.ID, "25", "food")

	bill := &models.Bill{
		UserID:     suite.user.ID,
		AccountID:  account.ID,
		Name:       "Rent",
		Amount:     dec("900"),
		Category:   "housing",
		DayOfMonth: 1,
		IsActive:   true,
	}
	require.NoError(suite.T(), suite.db.CreateBill(bill))

	require.NoError(suite.T(), suite.db.DeleteAccount(suite.user.ID, account.ID))

	_, err := suite.db.GetAccount(suite.user.ID, account.ID)
	assert.Error(suite.T(), err)
	_, err = suite.db.GetTransaction(suite.user.ID, txn.ID)
	assert.Error(suite.T(), err, "transactions should be deleted with the account")
	_, err = suite.db.GetBill(suite.user.ID, bill.ID)
	assert.Error(suite.T(), err, "bills should be deleted with the account")
}

func (suite *DBTestSuite) TestRunInTx_RollsBackOnError() {
	account := suite.newAccount("Checking", models.Checking, "100")

	boom := errors.New("boom")
	err := suite.db.RunInTx(context.Background(), func(tx ledger.Tx) error {
		a, err := tx.AccountForUpdate(suite.user.ID, account.ID)
		if err != nil {
			return err
		}
		a.Balance = dec("0")
		if err := tx.SaveAccountBalances(a); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(suite.T(), err, boom)

	got, err := suite.db.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "100", got.Balance.String(), "rolled-back write must not be visible")
}

func (suite *DBTestSuite) TestRunInTx_CommitsOnSuccess() {
	account := suite.newAccount("Checking", models.Checking, "100")

	err := suite.db.RunInTx(context.Background(), func(tx ledger.Tx) error {
		a, err := tx.AccountForUpdate(suite.user.ID, account.ID)
		if err != nil {
			return err
		}
		a.Balance = dec("42")
		return tx.SaveAccountBalances(a)
	})
	require.NoError(suite.T(), err)

	got, err := suite.db.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "42", got.Balance.String())
}

func (suite *DBTestSuite) TestDecimalRoundTrip() {
	// Balances travel through TEXT columns, so awkward fractions survive
	// exactly.
	account := suite.newAccount("Savings", models.Savings, "0.1")

	err := suite.db.RunInTx(context.Background(), func(tx ledger.Tx) error {
		a, err := tx.AccountForUpdate(suite.user.ID, account.ID)
		if err != nil {
			return err
		}
		a.Balance = a.Balance.Add(dec("0.2"))
		return tx.SaveAccountBalances(a)
	})
	require.NoError(suite.T(), err)

	got, err := suite.db.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "0.3", got.Balance.String())
}

func (suite *DBTestSuite) TestListTransactionsByCategory() {
	account := suite.newAccount("Checking", models.Checking, "100")
	suite.insertTransaction(account.ID, "10", "food")
	suite.insertTransaction(account.ID, "20", "food")
	suite.insertTransaction(account.ID, "30", "transport")

	food, err := suite.db.ListTransactionsByCategory(suite.user.ID, "food")
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), food, 2)

	all, err := suite.db.ListTransactions(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 3)
}

func (suite *DBTestSuite) TestBillsOrderedByDueDay() {
	account := suite.newAccount("Checking", models.Checking, "100")
	for _, b := range []struct {
		name string
		day  int
	}{
		{"Rent", 28},
		{"Internet", 5},
		{"Power", 14},
	} {
		bill := &models.Bill{
			UserID: suite.user.ID, AccountID: account.ID, Name: b.name,
			Amount: dec("10"), Category: "utilities", DayOfMonth: b.day, IsActive: true,
		}
		require.NoError(suite.T(), suite.db.CreateBill(bill))
	}

	bills, err := suite.db.ListBills(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), bills, 3)
	assert.Equal(suite.T(), "Internet", bills[0].Name)
	assert.Equal(suite.T(), "Power", bills[1].Name)
	assert.Equal(suite.T(), "Rent", bills[2].Name)
}

func (suite *DBTestSuite) TestUpdateBillLeavesPaymentStateAlone() {
	account := suite.newAccount("Checking", models.Checking, "100")
	bill := &models.Bill{
		UserID: suite.user.ID, AccountID: account.ID, Name: "Power",
		Amount: dec("60"), Category: "utilities", DayOfMonth: 14, IsActive: true,
	}
	require.NoError(suite.T(), suite.db.CreateBill(bill))

	// Mark paid through the transaction surface, as the engine would.
	err := suite.db.RunInTx(context.Background(), func(tx ledger.Tx) error {
		b, err := tx.BillByID(suite.user.ID, bill.ID)
		if err != nil {
			return err
		}
		now := time.Now()
		month, year := int(now.Month()), now.Year()
		b.IsPaid = true
		b.PaidDate = &now
		b.LastPaidMonth = &month
		b.LastPaidYear = &year
		return tx.SaveBillPaymentState(b)
	})
	require.NoError(suite.T(), err)

	bill.Amount = dec("65")
	require.NoError(suite.T(), suite.db.UpdateBill(bill))

	got, err := suite.db.GetBill(suite.user.ID, bill.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "65", got.Amount.String())
	assert.True(suite.T(), got.IsPaid, "definition edits must not clear payment state")
	assert.NotNil(suite.T(), got.LastPaidMonth)
}

func (suite *DBTestSuite) TestSavingsGoalCRUD() {
	goal := &models.SavingsGoal{
		UserID:        suite.user.ID,
		Name:          "Emergency Fund",
		CurrentAmount: dec("0"),
		TargetAmount:  dec("3000"),
		IsActive:      true,
	}
	require.NoError(suite.T(), suite.db.CreateSavingsGoal(goal))

	goal.Name = "Emergency"
	goal.TargetAmount = dec("5000")
	require.NoError(suite.T(), suite.db.UpdateSavingsGoal(goal))

	got, err := suite.db.GetSavingsGoal(suite.user.ID, goal.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Emergency", got.Name)
	assert.Equal(suite.T(), "5000", got.TargetAmount.String())

	require.NoError(suite.T(), suite.db.DeleteSavingsGoal(suite.user.ID, goal.ID))
	_, err = suite.db.GetSavingsGoal(suite.user.ID, goal.ID)
	assert.Error(suite.T(), err)
}

func (suite *DBTestSuite) TestListSavingsGoals_ActiveOnly() {
	for _, g := range []struct {
		name   string
		active bool
	}{
		{"Vacation", true},
		{"Old Car", false},
	} {
		goal := &models.SavingsGoal{
			UserID: suite.user.ID, Name: g.name,
			CurrentAmount: dec("0"), TargetAmount: dec("100"), IsActive: g.active,
		}
		require.NoError(suite.T(), suite.db.CreateSavingsGoal(goal))
	}

	active, err := suite.db.ListSavingsGoals(suite.user.ID, true)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), active, 1)
	assert.Equal(suite.T(), "Vacation", active[0].Name)

	all, err := suite.db.ListSavingsGoals(suite.user.ID, false)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 2)
}

func (suite *DBTestSuite) TestCategoryUsageAndRename() {
	account := suite.newAccount("Checking", models.Checking, "100")
	suite.insertTransaction(account.ID, "10", "food")
	suite.insertTransaction(account.ID, "20", "food")
	bill := &models.Bill{
		UserID: suite.user.ID, AccountID: account.ID, Name: "Groceries Box",
		Amount: dec("50"), Category: "food", DayOfMonth: 3, IsActive: true,
	}
	require.NoError(suite.T(), suite.db.CreateBill(bill))

	usage, err := suite.db.ListCategoryUsage(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), usage, 1)
	assert.Equal(suite.T(), "food", usage[0].Name)
	assert.Equal(suite.T(), 2, usage[0].TransactionCount)
	assert.Equal(suite.T(), 1, usage[0].BillCount)

	require.NoError(suite.T(), suite.db.RenameCategory(suite.user.ID, "food", "groceries"))

	renamed, err := suite.db.ListCategoryUsage(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), renamed, 1)
	assert.Equal(suite.T(), "groceries", renamed[0].Name)

	got, err := suite.db.GetBill(suite.user.ID, bill.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "groceries", got.Category)
}

func (suite *DBTestSuite) TestRemoveCategory_DefaultsToUncategorized() {
	account := suite.newAccount("Checking", models.Checking, "100")
	txn := suite.insertTransaction(account.ID, "10", "misc")

	require.NoError(suite.T(), suite.db.RemoveCategory(suite.user.ID, "misc", ""))

	got, err := suite.db.GetTransaction(suite.user.ID, txn.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Uncategorized", got.Category)
}

func (suite *DBTestSuite) TestCountAll() {
	account := suite.newAccount("Checking", models.Checking, "100")
	suite.insertTransaction(account.ID, "10", "food")

	counts, err := suite.db.CountAll()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, counts.Users)
	assert.Equal(suite.T(), 1, counts.Accounts)
	assert.Equal(suite.T(), 1, counts.Transactions)
	assert.Equal(suite.T(), 0, counts.Bills)
}

// SessionTestSuite provides a test suite for session operations
type SessionTestSuite struct {
	suite.Suite
	db   *DB
	user *models.User
}

// SetupTest runs before each test
func (suite *SessionTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db

	// Create a test user
	password, err := auth.HashPassword("testpass")
	require.NoError(suite.T(), err, "failed to hash password")

	user, err := suite.db.CreateUser("testuser", "test@example.com", password)
	require.NoError(suite.T(), err, "failed to create test user")
	suite.user = user
}

// TearDownTest runs after each test
func (suite *SessionTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *SessionTestSuite) TestCreateAndValidateSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(token, suite.user.ID, expiresAt)
	require.NoError(suite.T(), err)

	// Validate the session
	sessionUser, err := suite.db.ValidateSession(token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "testuser", sessionUser.Username)
	assert.Equal(suite.T(), "test@example.com", sessionUser.Email)
}

func (suite *SessionTestSuite) TestValidateSessionWithInfo() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(token, suite.user.ID, expiresAt)
	require.NoError(suite.T(), err)

	// Get session info
	info, err := suite.db.ValidateSessionWithInfo(token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "testuser", info.User.Username)

	// Check that last_activity is recent
	timeSinceActivity := time.Since(info.LastActivity)
	assert.Less(suite.T(), timeSinceActivity, 5*time.Second, "LastActivity should be recent")
}

func (suite *SessionTestSuite) TestRenewSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	originalExpiry := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(token, suite.user.ID, originalExpiry)
	require.NoError(suite.T(), err)

	// Wait a moment to ensure timestamps differ
	time.Sleep(10 * time.Millisecond)

	// Get original session info
	originalInfo, err := suite.db.ValidateSessionWithInfo(token)
	require.NoError(suite.T(), err)

	// Renew the session
	newExpiry := time.Now().Add(60 * 24 * time.Hour)
	err = suite.db.RenewSession(token, newExpiry)
	require.NoError(suite.T(), err)

	// Get updated session info
	updatedInfo, err := suite.db.ValidateSessionWithInfo(token)
	require.NoError(suite.T(), err)

	// Verify last_activity was updated
	assert.True(suite.T(), updatedInfo.LastActivity.After(originalInfo.LastActivity),
		"LastActivity should be updated after renewal")

	// Verify expires_at was updated
	assert.True(suite.T(), updatedInfo.ExpiresAt.After(originalInfo.ExpiresAt),
		"ExpiresAt should be extended after renewal")
}

func (suite *SessionTestSuite) TestDeleteSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(token, suite.user.ID, expiresAt)
	require.NoError(suite.T(), err)

	// Verify session exists
	_, err = suite.db.ValidateSession(token)
	require.NoError(suite.T(), err, "session should exist before deletion")

	// Delete session
	err = suite.db.DeleteSession(token)
	require.NoError(suite.T(), err)

	// Verify session is gone
	_, err = suite.db.ValidateSession(token)
	assert.Error(suite.T(), err, "expected error after deleting session")
}

func (suite *SessionTestSuite) TestCleanExpiredSessions() {
	expired, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)
	live, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.db.CreateSession(expired, suite.user.ID, time.Now().Add(-time.Hour)))
	require.NoError(suite.T(), suite.db.CreateSession(live, suite.user.ID, time.Now().Add(time.Hour)))

	require.NoError(suite.T(), suite.db.CleanExpiredSessions())

	_, err = suite.db.ValidateSession(live)
	assert.NoError(suite.T(), err, "live session should survive cleanup")
	_, err = suite.db.ValidateSession(expired)
	assert.Error(suite.T(), err)
}

// Test suite runners
func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
