package costmodel

import "github.com/shopspring/decimal"

// FlatFrictionModel charges a fixed dollar friction per round trip,
// covering commission, slippage and spread as one figure.
type FlatFrictionModel struct {
	friction decimal.Decimal
	stress   decimal.Decimal
}

// NewFlatFrictionModel creates a flat friction model with a 1.0x stress
// multiplier.
func NewFlatFrictionModel(frictionDollars float64) CostModel {
	return &FlatFrictionModel{
		friction: decimal.NewFromFloat(frictionDollars),
		stress:   decimal.NewFromInt(1),
	}
}

// EmbedCost implements costmodel.CostModel.
func (m *FlatFrictionModel) EmbedCost(riskBasisPoints float64, targetDistancePoints float64, pointValue float64) (float64, float64) {
	pv := decimal.NewFromFloat(pointValue)
	friction := m.friction.Mul(m.stress)

	riskDec := decimal.NewFromFloat(riskBasisPoints).Mul(pv).Add(friction)
	rewardDec := decimal.NewFromFloat(targetDistancePoints).Mul(pv).Sub(friction)

	risk, _ := riskDec.Float64()
	reward, _ := rewardDec.Float64()

	return risk, reward
}

// FrictionDollars implements costmodel.CostModel.
func (m *FlatFrictionModel) FrictionDollars() float64 {
	friction, _ := m.friction.Mul(m.stress).Float64()

	return friction
}

// WithStress implements costmodel.CostModel.
func (m *FlatFrictionModel) WithStress(multiplier float64) CostModel {
	return &FlatFrictionModel{
		friction: m.friction,
		stress:   m.stress.Mul(decimal.NewFromFloat(multiplier)),
	}
}
