package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tradeforge/rangebreak/pkg/errors"
)

type BarTestSuite struct {
	suite.Suite
}

func TestBarSuite(t *testing.T) {
	suite.Run(t, new(BarTestSuite))
}

func validBar(minute int) Bar {
	return Bar{
		Time:  time.Date(2024, 3, 4, 9, 30+minute, 0, 0, time.UTC),
		Open:  100.5,
		High:  101.0,
		Low:   100.0,
		Close: 100.8,
	}
}

func (suite *BarTestSuite) TestBarValidate() {
	suite.NoError(validBar(0).Validate())

	nan := validBar(0)
	nan.Close = math.NaN()
	suite.True(errors.HasCode(nan.Validate(), errors.ErrCodeMalformedBar))

	inf := validBar(0)
	inf.High = math.Inf(1)
	suite.True(errors.HasCode(inf.Validate(), errors.ErrCodeMalformedBar))

	inverted := validBar(0)
	inverted.High = 99.0
	suite.True(errors.HasCode(inverted.Validate(), errors.ErrCodeMalformedBar))
}

func (suite *BarTestSuite) TestBarSeriesValidate() {
	suite.NoError(BarSeries{validBar(0), validBar(1), validBar(2)}.Validate())
	suite.NoError(BarSeries{}.Validate())

	outOfOrder := BarSeries{validBar(1), validBar(0)}
	suite.True(errors.HasCode(outOfOrder.Validate(), errors.ErrCodeNonMonotonicSeries))

	// Equal timestamps are as invalid as reversed ones.
	duplicate := BarSeries{validBar(0), validBar(0)}
	suite.True(errors.HasCode(duplicate.Validate(), errors.ErrCodeNonMonotonicSeries))
}

func (suite *BarTestSuite) TestRangeWindow() {
	window := RangeWindow{High: 101.0, Low: 100.0}
	suite.InDelta(1.0, window.Size(), 1e-9)
	suite.True(window.Tradeable())

	suite.False(RangeWindow{High: 100.0, Low: 100.0}.Tradeable())
	suite.False(RangeWindow{High: 99.0, Low: 100.0}.Tradeable())
}

func (suite *BarTestSuite) TestTradeSpecValidate() {
	spec := TradeSpec{
		StopFraction: 1.0,
		RewardRisk:   2.0,
		CostModelID:  "flat_friction",
		RiskBasis:    RiskBasisStructural,
	}
	suite.NoError(spec.Validate())

	tests := []struct {
		name   string
		mutate func(*TradeSpec)
	}{
		{"zero stop fraction", func(s *TradeSpec) { s.StopFraction = 0 }},
		{"stop fraction above one", func(s *TradeSpec) { s.StopFraction = 1.01 }},
		{"negative reward risk", func(s *TradeSpec) { s.RewardRisk = -1 }},
		{"missing cost model", func(s *TradeSpec) { s.CostModelID = "" }},
		{"unknown risk basis", func(s *TradeSpec) { s.RiskBasis = "vibes" }},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			invalid := spec
			tc.mutate(&invalid)

			err := invalid.Validate()
			suite.Require().Error(err)
			suite.True(errors.IsConfigError(err))
		})
	}
}

func (suite *BarTestSuite) TestOutcomeKindTerminal() {
	suite.True(OutcomeWin.IsTerminalTrade())
	suite.True(OutcomeLoss.IsTerminalTrade())
	suite.False(OutcomeNoTrade.IsTerminalTrade())
	suite.False(OutcomeOpen.IsTerminalTrade())
}
