package robustness

import (
	"fmt"

	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/stats"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
)

// ReEvaluator re-derives the full outcome sequence under a friction stress
// multiplier. The orchestrator backs it with a re-run of the evaluator over
// the same instances using CostModel.WithStress.
type ReEvaluator func(stressMultiplier float64) ([]types.TradeOutcome, error)

// CostStress re-runs the simulation at successively higher friction
// multipliers and reports the lowest multiplier at which avg R falls below
// the configured floor. The check passes when that breakpoint sits at or
// above the required safety margin; a breakpoint of zero means no tested
// multiplier broke the edge.
func CostStress(reEvaluate ReEvaluator, cfg ValidationConfig) (types.CostStressResult, error) {
	result := types.CostStressResult{
		AvgRByMultiplier: make(map[string]float64, len(cfg.StressMultipliers)),
	}

	for _, multiplier := range cfg.StressMultipliers {
		outcomes, err := reEvaluate(multiplier)
		if err != nil {
			return result, errors.Wrapf(errors.ErrCodeQueryFailed, err,
				"cost stress re-evaluation at %.2fx failed", multiplier)
		}

		avgR := stats.Aggregate(outcomes).AvgR
		result.AvgRByMultiplier[fmt.Sprintf("%.2fx", multiplier)] = avgR

		if result.BreakpointMultiplier == 0 && avgR < cfg.StressMinAvgR {
			result.BreakpointMultiplier = multiplier
		}
	}

	result.Pass = result.BreakpointMultiplier == 0 || result.BreakpointMultiplier >= cfg.StressRequiredMargin

	return result, nil
}
