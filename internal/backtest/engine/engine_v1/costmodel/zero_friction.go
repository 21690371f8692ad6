package costmodel

// ZeroFrictionModel implements CostModel with no friction at all.
type ZeroFrictionModel struct{}

// NewZeroFrictionModel creates a new zero friction model.
func NewZeroFrictionModel() CostModel {
	return &ZeroFrictionModel{}
}

// EmbedCost returns the raw point values converted to dollars.
func (m *ZeroFrictionModel) EmbedCost(riskBasisPoints float64, targetDistancePoints float64, pointValue float64) (float64, float64) {
	return riskBasisPoints * pointValue, targetDistancePoints * pointValue
}

// FrictionDollars returns 0.
func (m *ZeroFrictionModel) FrictionDollars() float64 {
	return 0.0
}

// WithStress returns the model unchanged; zero friction scales to zero.
func (m *ZeroFrictionModel) WithStress(multiplier float64) CostModel {
	return m
}
