package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/tradeforge/rangebreak/pkg/errors"
)

// RiskBasis selects the reference point the stop distance is measured from.
// The same basis value is consumed by both the stop/target calculation and
// the cost model; stop and target distances are never computed from
// different references.
type RiskBasis string

const (
	// RiskBasisStructural sizes the trade from the window edge: the stop
	// distance is a fraction of the full range size.
	RiskBasisStructural RiskBasis = "structural"
	// RiskBasisEntryAnchored sizes the trade from the actual fill price.
	RiskBasisEntryAnchored RiskBasis = "entry_anchored"
)

// AllRiskBases lists the supported risk basis variants.
var AllRiskBases = []any{
	RiskBasisStructural,
	RiskBasisEntryAnchored,
}

// TradeSpec is the immutable configuration for one backtested strategy
// variant. A single instance is shared across all historical range
// instances being tested.
type TradeSpec struct {
	// StopFraction is the stop distance as a fraction of the range size, in (0, 1].
	StopFraction float64 `yaml:"stop_fraction" json:"stop_fraction" validate:"gt=0,lte=1"`
	// RewardRisk is the profit target expressed as a multiple of the stop distance.
	RewardRisk float64 `yaml:"reward_risk" json:"reward_risk" validate:"gt=0"`
	// CostModelID names the cost model used to embed friction.
	CostModelID string `yaml:"cost_model_id" json:"cost_model_id" validate:"required"`
	// RiskBasis selects structural or entry-anchored trade sizing.
	RiskBasis RiskBasis `yaml:"risk_basis" json:"risk_basis" validate:"oneof=structural entry_anchored"`
}

var specValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the spec before any data is touched. Invalid specs fail
// the entire configuration run.
func (s TradeSpec) Validate() error {
	if err := specValidator.Struct(s); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
			"invalid trade spec (stop_fraction=%f, reward_risk=%f)", s.StopFraction, s.RewardRisk)
	}

	return nil
}
