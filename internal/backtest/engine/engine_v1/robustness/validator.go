// Package robustness answers whether an aggregated edge is real or a
// statistical artifact: it runs the walk-forward split, Monte Carlo
// resampling, regime stratification and cost stress checks over one
// evaluated trade sequence and combines them into a verdict.
package robustness

import (
	"fmt"
	"sort"

	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/stats"
	"github.com/tradeforge/rangebreak/internal/logger"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
	"go.uber.org/zap"
)

// Validator is the façade over the four independent robustness checks.
type Validator struct {
	config ValidationConfig
	log    *logger.Logger
}

// NewValidator creates a validator bound to one immutable config.
func NewValidator(config ValidationConfig, log *logger.Logger) (*Validator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Validator{
		config: config,
		log:    log,
	}, nil
}

// Validate runs all four checks over the evaluated outcome sequence and
// shapes the combined report. The verdict is rejected when any hard check
// fails (negative regime partition, Monte Carlo worst case negative, cost
// stress breakpoint below margin), marginal when soft warnings exceed the
// configured budget, and approved otherwise.
func (v *Validator) Validate(outcomes []types.TradeOutcome, reEvaluate ReEvaluator) (types.RobustnessReport, error) {
	report := types.RobustnessReport{}

	trades := terminalTradesChronological(outcomes)
	if len(trades) == 0 {
		return report, errors.New(errors.ErrCodeEmptyTradeSequence, "no terminal trades to validate")
	}

	rValues := make([]float64, len(trades))
	for i, trade := range trades {
		rValues[i] = trade.RRealized
	}

	var softWarnings []string

	report.WalkForward = WalkForward(rValues, v.config)
	if !report.WalkForward.Pass {
		softWarnings = append(softWarnings, fmt.Sprintf(
			"walk-forward degradation: train avg R %.3f, test avg R %.3f",
			report.WalkForward.TrainAvgR, report.WalkForward.TestAvgR))
	}

	report.MonteCarlo = MonteCarlo(rValues, v.config.MonteCarloSeed, v.config.MonteCarloDraws)

	var regimePass bool

	var regimeWarnings []string

	report.RegimeSplits, regimePass, regimeWarnings = Stratify(trades, v.config)
	softWarnings = append(softWarnings, regimeWarnings...)

	var err error

	report.CostStress, err = CostStress(reEvaluate, v.config)
	if err != nil {
		return report, err
	}

	if maxDD := stats.MaxDrawdown(rValues); maxDD > v.config.MaxDrawdownWarnR {
		softWarnings = append(softWarnings, fmt.Sprintf("max drawdown %.2fR exceeds %.2fR", maxDD, v.config.MaxDrawdownWarnR))
	}

	report.SoftWarnings = softWarnings
	report.Verdict = v.verdict(report, regimePass, len(softWarnings))

	v.log.Debug("robustness validation complete",
		zap.String("verdict", string(report.Verdict)),
		zap.Bool("walk_forward_pass", report.WalkForward.Pass),
		zap.Bool("monte_carlo_pass", report.MonteCarlo.Pass),
		zap.Bool("regime_pass", regimePass),
		zap.Bool("cost_stress_pass", report.CostStress.Pass),
		zap.Int("soft_warnings", len(softWarnings)),
	)

	return report, nil
}

func (v *Validator) verdict(report types.RobustnessReport, regimePass bool, softWarnings int) types.Verdict {
	if !regimePass || !report.MonteCarlo.Pass || !report.CostStress.Pass {
		return types.VerdictRejected
	}

	if softWarnings > v.config.MaxSoftWarnings {
		return types.VerdictMarginal
	}

	return types.VerdictApproved
}

// terminalTradesChronological filters the sequence down to win/loss trades
// and restores entry-time order, since every order-sensitive statistic
// depends on it.
func terminalTradesChronological(outcomes []types.TradeOutcome) []types.TradeOutcome {
	trades := make([]types.TradeOutcome, 0, len(outcomes))

	for _, outcome := range outcomes {
		if outcome.Kind.IsTerminalTrade() {
			trades = append(trades, outcome)
		}
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryTime.Before(trades[j].EntryTime)
	})

	return trades
}
