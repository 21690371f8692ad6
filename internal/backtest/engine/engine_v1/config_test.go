package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/costmodel"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
	"gopkg.in/yaml.v2"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestUnmarshalFullConfig() {
	content := `
symbol: NQ
point_value: 20.0
friction_dollars: 5.0
cost_model: flat_friction
risk_basis: entry_anchored
stop_fractions: [0.5, 1.0]
reward_risks: [1.5, 2.0, 3.0]
parallelism: 4
start_time: 2024-01-01T00:00:00Z
end_time: 2024-06-30T00:00:00Z
validation:
  train_ratio: 0.8
  walk_forward_max_abs_delta: 0.25
  walk_forward_max_rel_delta: 0.5
  monte_carlo_draws: 500
  monte_carlo_seed: 7
  min_sample_size: 20
  stress_multipliers: [1.25, 1.5, 2.0]
  stress_min_avg_r: 0.15
  stress_required_margin: 1.5
  max_soft_warnings: 2
  max_drawdown_warn_r: 5.0
`

	var config BacktestEngineV1Config

	suite.Require().NoError(yaml.Unmarshal([]byte(content), &config))
	suite.Require().NoError(config.Validate())

	suite.Equal("NQ", config.Symbol)
	suite.InDelta(20.0, config.PointValue, 1e-9)
	suite.Equal(costmodel.ModelFlatFriction, config.CostModel)
	suite.Equal(types.RiskBasisEntryAnchored, config.RiskBasis)
	suite.Equal([]float64{0.5, 1.0}, config.StopFractions)
	suite.Equal(4, config.Parallelism)
	suite.True(config.StartTime.IsSome())
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
	suite.InDelta(0.8, config.Validation.TrainRatio, 1e-9)
	suite.Equal(int64(7), config.Validation.MonteCarloSeed)
}

func (suite *ConfigTestSuite) TestUnmarshalDefaults() {
	content := `
symbol: ES
point_value: 50.0
friction_dollars: 4.0
stop_fractions: [1.0]
reward_risks: [2.0]
`

	var config BacktestEngineV1Config

	suite.Require().NoError(yaml.Unmarshal([]byte(content), &config))
	suite.Require().NoError(config.Validate())

	suite.Equal(costmodel.ModelFlatFriction, config.CostModel)
	suite.Equal(types.RiskBasisStructural, config.RiskBasis)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
	suite.InDelta(0.70, config.Validation.TrainRatio, 1e-9)
	suite.Equal(1000, config.Validation.MonteCarloDraws)
}

func (suite *ConfigTestSuite) TestValidateRejectsBadConfigs() {
	tests := []struct {
		name   string
		mutate func(*BacktestEngineV1Config)
	}{
		{
			name:   "missing symbol",
			mutate: func(c *BacktestEngineV1Config) { c.Symbol = "" },
		},
		{
			name:   "zero point value",
			mutate: func(c *BacktestEngineV1Config) { c.PointValue = 0 },
		},
		{
			name:   "negative friction",
			mutate: func(c *BacktestEngineV1Config) { c.FrictionDollars = -1 },
		},
		{
			name:   "stop fraction above one",
			mutate: func(c *BacktestEngineV1Config) { c.StopFractions = []float64{1.5} },
		},
		{
			name:   "zero reward risk",
			mutate: func(c *BacktestEngineV1Config) { c.RewardRisks = []float64{0} },
		},
		{
			name:   "empty sweep grid",
			mutate: func(c *BacktestEngineV1Config) { c.StopFractions = nil },
		},
		{
			name:   "unknown cost model",
			mutate: func(c *BacktestEngineV1Config) { c.CostModel = "free_money" },
		},
		{
			name: "non-ascending stress multipliers",
			mutate: func(c *BacktestEngineV1Config) {
				c.Validation.StressMultipliers = []float64{2.0, 1.5}
			},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := TestConfig("NQ", 20.0, 5.0)
			tc.mutate(&config)

			err := config.Validate()
			suite.Require().Error(err)
			suite.True(errors.IsConfigError(err))
		})
	}
}

func (suite *ConfigTestSuite) TestSpecsExpandGrid() {
	config := TestConfig("NQ", 20.0, 5.0)
	config.StopFractions = []float64{0.5, 1.0}
	config.RewardRisks = []float64{1.5, 2.0, 3.0}
	config.RiskBasis = types.RiskBasisEntryAnchored

	specs := config.Specs()

	suite.Len(specs, 6)
	suite.Equal(types.TradeSpec{
		StopFraction: 0.5,
		RewardRisk:   1.5,
		CostModelID:  string(costmodel.ModelFlatFriction),
		RiskBasis:    types.RiskBasisEntryAnchored,
	}, specs[0])

	for _, spec := range specs {
		suite.Require().NoError(spec.Validate())
	}
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	suite.Contains(schemaJSON, "stop_fractions")
	suite.Contains(schemaJSON, "flat_friction")
	suite.Contains(schemaJSON, "entry_anchored")
	suite.Contains(schemaJSON, "date-time")
}
