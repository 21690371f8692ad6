package robustness

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tradeforge/rangebreak/internal/logger"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
)

type ValidatorTestSuite struct {
	suite.Suite
	config ValidationConfig
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}

func (suite *ValidatorTestSuite) SetupTest() {
	suite.config = DefaultValidationConfig()
	suite.config.MonteCarloDraws = 200
}

func (suite *ValidatorTestSuite) newValidator(config ValidationConfig) *Validator {
	validator, err := NewValidator(config, logger.NewNopLogger())
	suite.Require().NoError(err)

	return validator
}

// healthyTrades builds a sequence whose edge holds in and out of sample.
func healthyTrades(n int) []types.TradeOutcome {
	days := tradingDays(n)
	trades := make([]types.TradeOutcome, n)

	for i, day := range days {
		r := 0.5
		// Losses land on a cycle coprime with the weekday and range-size
		// cycles, so no regime partition is uniformly negative.
		if i%7 == 6 {
			r = -1.0
		}

		trades[i] = tradeOn(day, r, 1.0+float64(i%8))
	}

	return trades
}

func healthyReEvaluator(trades []types.TradeOutcome) ReEvaluator {
	return func(stressMultiplier float64) ([]types.TradeOutcome, error) {
		return trades, nil
	}
}

func (suite *ValidatorTestSuite) TestHealthyEdgeApproved() {
	trades := healthyTrades(150)
	validator := suite.newValidator(suite.config)

	report, err := validator.Validate(trades, healthyReEvaluator(trades))
	suite.Require().NoError(err)

	suite.Equal(types.VerdictApproved, report.Verdict)
	suite.True(report.WalkForward.Pass)
	suite.True(report.MonteCarlo.Pass)
	suite.True(report.CostStress.Pass)
}

func (suite *ValidatorTestSuite) TestWalkForwardFailureIsSoftOnly() {
	config := suite.config
	config.MaxSoftWarnings = 0

	days := tradingDays(100)
	trades := make([]types.TradeOutcome, len(days))

	// A strong first 70 trades and a mediocre last 30: still profitable out
	// of sample, but degraded beyond the tolerance.
	for i, day := range days {
		r := 0.9
		if i >= 70 {
			r = 0.4
		}

		trades[i] = tradeOn(day, r, 1.0+float64(i%8))
	}

	validator := suite.newValidator(config)

	report, err := validator.Validate(trades, healthyReEvaluator(trades))
	suite.Require().NoError(err)

	suite.False(report.WalkForward.Pass)
	suite.NotEmpty(report.SoftWarnings)
	// Degradation alone never rejects.
	suite.Equal(types.VerdictMarginal, report.Verdict)
}

func (suite *ValidatorTestSuite) TestCostStressFailureRejects() {
	trades := healthyTrades(150)
	validator := suite.newValidator(suite.config)

	fragile := ReEvaluator(func(stressMultiplier float64) ([]types.TradeOutcome, error) {
		losing := make([]types.TradeOutcome, len(trades))
		copy(losing, trades)

		for i := range losing {
			losing[i].RRealized = -0.2
		}

		return losing, nil
	})

	report, err := validator.Validate(trades, fragile)
	suite.Require().NoError(err)

	suite.False(report.CostStress.Pass)
	suite.Equal(types.VerdictRejected, report.Verdict)
}

func (suite *ValidatorTestSuite) TestConsistentLosingEdgeRejected() {
	days := tradingDays(100)
	trades := make([]types.TradeOutcome, len(days))

	for i, day := range days {
		trades[i] = tradeOn(day, -1.0, 1.0+float64(i%8))
	}

	validator := suite.newValidator(suite.config)

	report, err := validator.Validate(trades, healthyReEvaluator(trades))
	suite.Require().NoError(err)

	suite.False(report.MonteCarlo.Pass)
	suite.Equal(types.VerdictRejected, report.Verdict)
}

func (suite *ValidatorTestSuite) TestNonTerminalOutcomesAreFiltered() {
	trades := healthyTrades(120)

	withNoise := make([]types.TradeOutcome, 0, len(trades)+20)
	withNoise = append(withNoise, trades...)

	for i := 0; i < 20; i++ {
		noise := trades[i]
		noise.Kind = types.OutcomeNoTrade
		noise.RRealized = 0
		withNoise = append(withNoise, noise)
	}

	validator := suite.newValidator(suite.config)

	filtered, err := validator.Validate(withNoise, healthyReEvaluator(trades))
	suite.Require().NoError(err)

	pure, err := validator.Validate(trades, healthyReEvaluator(trades))
	suite.Require().NoError(err)

	suite.Equal(pure.WalkForward, filtered.WalkForward)
	suite.Equal(pure.MonteCarlo, filtered.MonteCarlo)
}

func (suite *ValidatorTestSuite) TestEmptyTradeSequence() {
	validator := suite.newValidator(suite.config)

	noTrades := []types.TradeOutcome{
		{Kind: types.OutcomeNoTrade},
		{Kind: types.OutcomeOpen},
	}

	_, err := validator.Validate(noTrades, healthyReEvaluator(nil))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptyTradeSequence))
}

func (suite *ValidatorTestSuite) TestInvalidConfigRejectedUpFront() {
	config := suite.config
	config.TrainRatio = 1.5

	_, err := NewValidator(config, logger.NewNopLogger())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))
}
