package robustness

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type WalkForwardTestSuite struct {
	suite.Suite
	config ValidationConfig
}

func TestWalkForwardSuite(t *testing.T) {
	suite.Run(t, new(WalkForwardTestSuite))
}

func (suite *WalkForwardTestSuite) SetupTest() {
	suite.config = DefaultValidationConfig()
}

func repeat(value float64, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = value
	}

	return values
}

func (suite *WalkForwardTestSuite) TestPartitionsSumToInput() {
	for _, n := range []int{2, 3, 10, 37, 100} {
		result := WalkForward(repeat(0.5, n), suite.config)

		suite.Equal(n, result.TrainTrades+result.TestTrades)
		suite.GreaterOrEqual(result.TrainTrades, 1)
		suite.GreaterOrEqual(result.TestTrades, 1)
	}
}

func (suite *WalkForwardTestSuite) TestStableEdgePasses() {
	rValues := append(repeat(0.5, 70), repeat(0.45, 30)...)

	result := WalkForward(rValues, suite.config)

	suite.True(result.Pass)
	suite.InDelta(0.5, result.TrainAvgR, 1e-9)
	suite.InDelta(0.45, result.TestAvgR, 1e-9)
	suite.InDelta(-0.05, result.Delta, 1e-9)
	suite.Equal(70, result.TrainTrades)
	suite.Equal(30, result.TestTrades)
}

func (suite *WalkForwardTestSuite) TestAbsoluteDegradationFails() {
	rValues := append(repeat(0.5, 70), repeat(0.1, 30)...)

	result := WalkForward(rValues, suite.config)

	// Degradation 0.4 exceeds the 0.25 absolute tolerance.
	suite.False(result.Pass)
}

func (suite *WalkForwardTestSuite) TestRelativeDegradationFails() {
	config := suite.config
	config.WalkForwardMaxAbsDelta = 1.0 // disarm the absolute gate

	rValues := append(repeat(0.5, 70), repeat(0.2, 30)...)

	result := WalkForward(rValues, config)

	// Degradation 0.3 is 60% of the in-sample 0.5, above the 50% tolerance.
	suite.False(result.Pass)
}

func (suite *WalkForwardTestSuite) TestImprovementAlwaysPasses() {
	rValues := append(repeat(0.1, 70), repeat(0.8, 30)...)

	result := WalkForward(rValues, suite.config)

	suite.True(result.Pass)
	suite.Positive(result.Delta)
}

func (suite *WalkForwardTestSuite) TestRelativeGateSkippedOnNonPositiveTrain() {
	config := suite.config
	config.WalkForwardMaxAbsDelta = 1.0

	// Train avg is negative; only the absolute gate applies.
	rValues := append(repeat(-0.1, 70), repeat(-0.5, 30)...)

	result := WalkForward(rValues, config)

	suite.True(result.Pass)
}

func (suite *WalkForwardTestSuite) TestTooFewTrades() {
	result := WalkForward([]float64{0.5}, suite.config)

	suite.Zero(result.TrainTrades)
	suite.Zero(result.TestTrades)
	suite.False(result.Pass)
}
