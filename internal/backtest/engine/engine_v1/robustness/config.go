package robustness

import (
	"github.com/go-playground/validator/v10"
	"github.com/tradeforge/rangebreak/pkg/errors"
)

// ValidationConfig holds every robustness threshold in one immutable value.
// It is passed explicitly into the validator and the cost stress tester;
// no package-level threshold exists anywhere, so two call sites can never
// silently disagree on a cutoff.
type ValidationConfig struct {
	// TrainRatio is the chronological walk-forward split point.
	TrainRatio float64 `yaml:"train_ratio" json:"train_ratio" validate:"gt=0,lt=1"`
	// WalkForwardMaxAbsDelta is the absolute out-of-sample avg R degradation
	// tolerated before the walk-forward check fails.
	WalkForwardMaxAbsDelta float64 `yaml:"walk_forward_max_abs_delta" json:"walk_forward_max_abs_delta" validate:"gte=0"`
	// WalkForwardMaxRelDelta is the relative degradation tolerated, as a
	// fraction of in-sample avg R. Only applied when in-sample avg R is
	// positive.
	WalkForwardMaxRelDelta float64 `yaml:"walk_forward_max_rel_delta" json:"walk_forward_max_rel_delta" validate:"gte=0"`
	// MonteCarloDraws is the bootstrap resample count.
	MonteCarloDraws int `yaml:"monte_carlo_draws" json:"monte_carlo_draws" validate:"gt=0"`
	// MonteCarloSeed seeds the resampler explicitly. Identical inputs and
	// seed reproduce identical percentiles, byte for byte.
	MonteCarloSeed int64 `yaml:"monte_carlo_seed" json:"monte_carlo_seed"`
	// MinSampleSize is the smallest regime partition used as pass/fail
	// evidence; smaller partitions report as inconclusive.
	MinSampleSize int `yaml:"min_sample_size" json:"min_sample_size" validate:"gt=0"`
	// StressMultipliers are the friction multipliers tested in ascending
	// order by the cost stress tester.
	StressMultipliers []float64 `yaml:"stress_multipliers" json:"stress_multipliers" validate:"min=1"`
	// StressMinAvgR is the avg R floor under stress; falling below it at a
	// multiplier marks the breakpoint.
	StressMinAvgR float64 `yaml:"stress_min_avg_r" json:"stress_min_avg_r"`
	// StressRequiredMargin is the minimum breakpoint multiplier for the
	// cost stress check to pass.
	StressRequiredMargin float64 `yaml:"stress_required_margin" json:"stress_required_margin" validate:"gt=0"`
	// MaxSoftWarnings is how many soft findings a configuration may carry
	// and still be approved rather than marginal.
	MaxSoftWarnings int `yaml:"max_soft_warnings" json:"max_soft_warnings" validate:"gte=0"`
	// MaxDrawdownWarnR is the max drawdown (in R) above which a soft
	// warning is recorded.
	MaxDrawdownWarnR float64 `yaml:"max_drawdown_warn_r" json:"max_drawdown_warn_r" validate:"gt=0"`
	// ChargeNoTradeFriction selects the documented no-breakout bookkeeping
	// policy: when true, instances without an entry are charged friction
	// against the full structural range basis; when false they are excluded
	// from the denominator entirely.
	ChargeNoTradeFriction bool `yaml:"charge_no_trade_friction" json:"charge_no_trade_friction"`
}

// DefaultValidationConfig returns the standard thresholds.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		TrainRatio:             0.70,
		WalkForwardMaxAbsDelta: 0.25,
		WalkForwardMaxRelDelta: 0.50,
		MonteCarloDraws:        1000,
		MonteCarloSeed:         42,
		MinSampleSize:          20,
		StressMultipliers:      []float64{1.25, 1.5, 1.75, 2.0, 2.25, 2.5},
		StressMinAvgR:          0.15,
		StressRequiredMargin:   1.5,
		MaxSoftWarnings:        2,
		MaxDrawdownWarnR:       5.0,
		ChargeNoTradeFriction:  false,
	}
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config before any check runs.
func (c ValidationConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidThreshold, "invalid validation config", err)
	}

	for i := 1; i < len(c.StressMultipliers); i++ {
		if c.StressMultipliers[i] <= c.StressMultipliers[i-1] {
			return errors.New(errors.ErrCodeInvalidThreshold, "stress multipliers must be strictly ascending")
		}
	}

	return nil
}
