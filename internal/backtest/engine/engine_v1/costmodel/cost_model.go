package costmodel

// CostModel converts point distances into cost-embedded dollar risk and
// reward. Both values are computed from the same risk basis distance that
// sized the trade; the caller never mixes a structural stop distance with an
// entry-anchored target distance.
type CostModel interface {
	// EmbedCost returns the realized dollar risk and reward for a trade
	// sized on riskBasisPoints with a target targetDistancePoints away.
	// Risk carries friction added, reward carries friction subtracted.
	EmbedCost(riskBasisPoints float64, targetDistancePoints float64, pointValue float64) (riskDollars float64, rewardDollars float64)
	// FrictionDollars returns the per-trade friction at the model's current
	// stress level.
	FrictionDollars() float64
	// WithStress returns a derived model whose friction is uniformly scaled
	// by the given multiplier. The receiver is not mutated.
	WithStress(multiplier float64) CostModel
}

// ModelID names a cost model configuration.
type ModelID string

const (
	ModelFlatFriction ModelID = "flat_friction"
	ModelZeroFriction ModelID = "zero_friction"
)

// AllModels lists the supported cost model identifiers.
var AllModels = []any{
	ModelFlatFriction,
	ModelZeroFriction,
}

// GetCostModel resolves a model identifier to an implementation.
// frictionDollars is the configured commission+slippage+spread figure;
// it is ignored by the zero model.
func GetCostModel(id ModelID, frictionDollars float64) CostModel {
	switch id {
	case ModelFlatFriction:
		return NewFlatFrictionModel(frictionDollars)
	case ModelZeroFriction:
		return NewZeroFrictionModel()
	default:
		return NewZeroFrictionModel()
	}
}
