package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/costmodel"
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/robustness"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
)

// BacktestEngineV1Config configures one sweep: the instrument economics,
// the cost model, the stop-fraction and reward:risk grids, and the
// robustness thresholds.
type BacktestEngineV1Config struct {
	Symbol          string                      `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument identifier" validate:"required"`
	PointValue      float64                     `yaml:"point_value" json:"point_value" jsonschema:"title=Point Value,description=Dollar value of one point of price movement,minimum=0" validate:"gt=0"`
	FrictionDollars float64                     `yaml:"friction_dollars" json:"friction_dollars" jsonschema:"title=Friction,description=Round-trip commission plus slippage plus spread in USD,minimum=0" validate:"gte=0"`
	CostModel       costmodel.ModelID           `yaml:"cost_model" json:"cost_model" jsonschema:"title=Cost Model,description=The cost model used to embed friction"`
	RiskBasis       types.RiskBasis             `yaml:"risk_basis" json:"risk_basis" jsonschema:"title=Risk Basis,description=Structural or entry-anchored trade sizing"`
	StopFractions   []float64                   `yaml:"stop_fractions" json:"stop_fractions" jsonschema:"title=Stop Fractions,description=Stop distances as fractions of the range size" validate:"min=1,dive,gt=0,lte=1"`
	RewardRisks     []float64                   `yaml:"reward_risks" json:"reward_risks" jsonschema:"title=Reward Risks,description=Profit targets as multiples of the stop distance" validate:"min=1,dive,gt=0"`
	Parallelism     int                         `yaml:"parallelism" json:"parallelism" jsonschema:"title=Parallelism,description=Worker count for the configuration sweep,minimum=0" validate:"gte=0"`
	StartTime       optional.Option[time.Time]  `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start bound on range close times"`
	EndTime         optional.Option[time.Time]  `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end bound on range close times"`
	Validation      robustness.ValidationConfig `yaml:"validation" json:"validation" jsonschema:"title=Validation,description=Robustness thresholds"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		Symbol          string                      `yaml:"symbol"`
		PointValue      float64                     `yaml:"point_value"`
		FrictionDollars float64                     `yaml:"friction_dollars"`
		CostModel       costmodel.ModelID           `yaml:"cost_model"`
		RiskBasis       types.RiskBasis             `yaml:"risk_basis"`
		StopFractions   []float64                   `yaml:"stop_fractions"`
		RewardRisks     []float64                   `yaml:"reward_risks"`
		Parallelism     int                         `yaml:"parallelism"`
		StartTime       *time.Time                  `yaml:"start_time"`
		EndTime         *time.Time                  `yaml:"end_time"`
		Validation      robustness.ValidationConfig `yaml:"validation"`
	}

	config := Config{
		CostModel:  costmodel.ModelFlatFriction,
		RiskBasis:  types.RiskBasisStructural,
		Validation: robustness.DefaultValidationConfig(),
	}
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.Symbol = config.Symbol
	c.PointValue = config.PointValue
	c.FrictionDollars = config.FrictionDollars
	c.CostModel = config.CostModel
	c.RiskBasis = config.RiskBasis
	c.StopFractions = config.StopFractions
	c.RewardRisks = config.RewardRisks
	c.Parallelism = config.Parallelism
	c.Validation = config.Validation

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

var engineConfigValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration before any data is touched.
func (c *BacktestEngineV1Config) Validate() error {
	if err := engineConfigValidator.StructExcept(c, "Validation", "StartTime", "EndTime"); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	switch c.CostModel {
	case costmodel.ModelFlatFriction, costmodel.ModelZeroFriction:
	default:
		return errors.Newf(errors.ErrCodeInvalidCostModel, "unknown cost model %q", c.CostModel)
	}

	return c.Validation.Validate()
}

// Specs expands the stop-fraction x reward:risk grid into trade specs.
func (c *BacktestEngineV1Config) Specs() []types.TradeSpec {
	specs := make([]types.TradeSpec, 0, len(c.StopFractions)*len(c.RewardRisks))

	for _, stopFraction := range c.StopFractions {
		for _, rewardRisk := range c.RewardRisks {
			specs = append(specs, types.TradeSpec{
				StopFraction: stopFraction,
				RewardRisk:   rewardRisk,
				CostModelID:  string(c.CostModel),
				RiskBasis:    c.RiskBasis,
			})
		}
	}

	return specs
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "costmodel.ModelID") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: costmodel.AllModels,
				}
			}

			if strings.Contains(t.String(), "types.RiskBasis") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: types.AllRiskBases,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a BacktestEngineV1Config with default values.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Symbol:          "",
		PointValue:      0,
		FrictionDollars: 0,
		CostModel:       costmodel.ModelFlatFriction,
		RiskBasis:       types.RiskBasisStructural,
		StopFractions:   nil,
		RewardRisks:     nil,
		Parallelism:     0,
		StartTime:       optional.None[time.Time](),
		EndTime:         optional.None[time.Time](),
		Validation:      robustness.DefaultValidationConfig(),
	}
}

// TestConfig returns a config suitable for tests.
func TestConfig(symbol string, pointValue float64, frictionDollars float64) BacktestEngineV1Config {
	config := EmptyConfig()
	config.Symbol = symbol
	config.PointValue = pointValue
	config.FrictionDollars = frictionDollars
	config.StopFractions = []float64{1.0}
	config.RewardRisks = []float64{2.0}

	return config
}
