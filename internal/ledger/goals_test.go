package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"budget-tracker/internal/ledger"
	"budget-tracker/internal/models"
)

type GoalsTestSuite struct {
	EngineTestSuite
	goal *models.SavingsGoal
}

func (suite *GoalsTestSuite) SetupTest() {
	suite.EngineTestSuite.SetupTest()
	suite.goal = &models.SavingsGoal{
		UserID:        suite.user.ID,
		Name:          "Vacation",
		CurrentAmount: dec("200"),
		TargetAmount:  dec("1000"),
		IsActive:      true,
	}
	require.NoError(suite.T(), suite.db.CreateSavingsGoal(suite.goal))
}

func (suite *GoalsTestSuite) reloadGoal() *models.SavingsGoal {
	goal, err := suite.db.GetSavingsGoal(suite.user.ID, suite.goal.ID)
	require.NoError(suite.T(), err)
	return goal
}

func (suite *GoalsTestSuite) TestAddGoalFunds() {
	goal, err := suite.engine.AddGoalFunds(suite.ctx, suite.user.ID, suite.goal.ID, dec("150.50"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "350.5", goal.CurrentAmount.String())
	assert.Equal(suite.T(), "350.5", suite.reloadGoal().CurrentAmount.String())
}

func (suite *GoalsTestSuite) TestAddGoalFunds_MayExceedTarget() {
	// The target is a goal, not a ceiling.
	goal, err := suite.engine.AddGoalFunds(suite.ctx, suite.user.ID, suite.goal.ID, dec("900"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "1100", goal.CurrentAmount.String())
	assert.Equal(suite.T(), 100.0, goal.PercentageComplete())
}

func (suite *GoalsTestSuite) TestAddGoalFunds_RejectsNonPositive() {
	for _, amount := range []string{"0", "-10"} {
		_, err := suite.engine.AddGoalFunds(suite.ctx, suite.user.ID, suite.goal.ID, dec(amount))
		var ve *ledger.ValidationError
		require.ErrorAs(suite.T(), err, &ve)
		assert.Equal(suite.T(), "amount", ve.Field)
	}
	assert.Equal(suite.T(), "200", suite.reloadGoal().CurrentAmount.String())
}

func (suite *GoalsTestSuite) TestWithdrawGoalFunds() {
	goal, err := suite.engine.WithdrawGoalFunds(suite.ctx, suite.user.ID, suite.goal.ID, dec("75"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "125", goal.CurrentAmount.String())
	assert.Equal(suite.T(), "125", suite.reloadGoal().CurrentAmount.String())
}

func (suite *GoalsTestSuite) TestWithdrawGoalFunds_BoundedByCurrent() {
	_, err := suite.engine.WithdrawGoalFunds(suite.ctx, suite.user.ID, suite.goal.ID, dec("200.01"))
	var ve *ledger.ValidationError
	require.ErrorAs(suite.T(), err, &ve)
	assert.Equal(suite.T(), "cannot withdraw more than current amount", ve.Message)

	// A failed withdrawal changes nothing.
	assert.Equal(suite.T(), "200", suite.reloadGoal().CurrentAmount.String())

	// Exactly the current amount is fine.
	goal, err := suite.engine.WithdrawGoalFunds(suite.ctx, suite.user.ID, suite.goal.ID, dec("200"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "0", goal.CurrentAmount.String())
}

func (suite *GoalsTestSuite) TestGoalFunds_ForeignGoalNotFound() {
	other, err := suite.db.CreateUser("other", "other@example.com", "hash")
	require.NoError(suite.T(), err)

	_, err = suite.engine.AddGoalFunds(suite.ctx, other.ID, suite.goal.ID, dec("10"))
	var nf *ledger.NotFoundError
	require.ErrorAs(suite.T(), err, &nf)

	_, err = suite.engine.WithdrawGoalFunds(suite.ctx, other.ID, suite.goal.ID, dec("10"))
	require.ErrorAs(suite.T(), err, &nf)
}

func TestGoalsSuite(t *testing.T) {
	suite.Run(t, new(GoalsTestSuite))
}
