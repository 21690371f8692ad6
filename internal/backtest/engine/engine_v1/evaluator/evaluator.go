package evaluator

import (
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/costmodel"
	"github.com/tradeforge/rangebreak/internal/logger"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
	"go.uber.org/zap"
)

// Evaluator classifies a single range instance into a trade outcome given
// a trade spec. It holds no per-instance state; one evaluator is shared
// across all instances of a configuration run.
type Evaluator struct {
	costModel  costmodel.CostModel
	pointValue float64
	// chargeNoTradeFriction applies the friction charge to instances where
	// no breakout was found, computed against the full structural range
	// basis. When false (the default), no-trade instances carry zero R and
	// stay out of the aggregate denominator entirely.
	chargeNoTradeFriction bool
	log                   *logger.Logger
}

// NewEvaluator creates an evaluator for one configuration run.
func NewEvaluator(costModel costmodel.CostModel, pointValue float64, chargeNoTradeFriction bool, log *logger.Logger) *Evaluator {
	return &Evaluator{
		costModel:             costModel,
		pointValue:            pointValue,
		chargeNoTradeFriction: chargeNoTradeFriction,
		log:                   log,
	}
}

// WithCostModel returns a copy of the evaluator bound to a different cost
// model. Used by the cost stress tester to re-derive outcomes at higher
// friction multipliers.
func (e *Evaluator) WithCostModel(costModel costmodel.CostModel) *Evaluator {
	clone := *e
	clone.costModel = costModel

	return &clone
}

// tradeLevels holds the prices and the single risk basis distance a trade
// is sized on. Stop and target are always derived from the same basis.
type tradeLevels struct {
	entryPrice  float64
	stopPrice   float64
	targetPrice float64
	// basisPoints is the risk basis distance in points. It feeds both the
	// target distance and the cost model.
	basisPoints float64
}

// levelsFor computes stop and target from the window edge (structural) or
// from the fill price (entry anchored). The basis distance is identical in
// both variants; only the anchor of the price levels moves.
func levelsFor(window types.RangeWindow, spec types.TradeSpec, direction types.Direction, fillPrice float64) tradeLevels {
	basis := spec.StopFraction * window.Size()
	targetDistance := spec.RewardRisk * basis

	var anchor float64

	switch spec.RiskBasis {
	case types.RiskBasisEntryAnchored:
		anchor = fillPrice
	default: // structural
		if direction == types.DirectionUp {
			anchor = window.High
		} else {
			anchor = window.Low
		}
	}

	levels := tradeLevels{
		entryPrice:  fillPrice,
		basisPoints: basis,
	}

	if direction == types.DirectionUp {
		levels.stopPrice = anchor - basis
		levels.targetPrice = anchor + targetDistance
	} else {
		levels.stopPrice = anchor + basis
		levels.targetPrice = anchor - targetDistance
	}

	return levels
}

// Evaluate classifies one range instance. Instances carrying a precomputed
// MAE/MFE summary instead of bars are routed to the excursion path.
//
// A returned error is always a data error: the caller excludes the instance
// and continues. Ambiguity never resolves to an invented win or loss; it
// resolves to no-trade, open, or the documented loss tie-break.
func (e *Evaluator) Evaluate(instance types.RangeInstance, spec types.TradeSpec) (types.TradeOutcome, error) {
	if !instance.Window.Tradeable() {
		e.log.Debug("range window is non-tradeable",
			zap.String("instance", instance.ID),
			zap.Float64("size", instance.Window.Size()),
		)

		return e.noTrade(instance), nil
	}

	if len(instance.Bars) == 0 {
		if instance.Excursion.IsSome() {
			return e.EvaluateExcursion(instance, spec)
		}

		return types.TradeOutcome{}, errors.Newf(errors.ErrCodeDataNotFound,
			"instance %s has neither bars nor excursion data", instance.ID)
	}

	if err := instance.Bars.Validate(); err != nil {
		return types.TradeOutcome{}, err
	}

	// Entry search: the entry bar is the first bar whose close is strictly
	// outside the window.
	entryIdx := -1

	var direction types.Direction

	for i, bar := range instance.Bars {
		if bar.Close > instance.Window.High {
			entryIdx, direction = i, types.DirectionUp

			break
		}

		if bar.Close < instance.Window.Low {
			entryIdx, direction = i, types.DirectionDown

			break
		}
	}

	if entryIdx < 0 {
		return e.noTrade(instance), nil
	}

	entryBar := instance.Bars[entryIdx]
	levels := levelsFor(instance.Window, spec, direction, entryBar.Close)

	riskDollars, rewardDollars := e.costModel.EmbedCost(levels.basisPoints, spec.RewardRisk*levels.basisPoints, e.pointValue)
	if riskDollars <= 0 {
		// Friction exceeds a degenerate near-zero stop. Fail closed.
		e.log.Warn("non-positive realized risk after cost embedding",
			zap.String("instance", instance.ID),
			zap.Float64("risk_dollars", riskDollars),
		)

		return e.noTrade(instance), nil
	}

	outcome := types.TradeOutcome{
		InstanceID:  instance.ID,
		Direction:   direction,
		EntryPrice:  levels.entryPrice,
		StopPrice:   levels.stopPrice,
		TargetPrice: levels.targetPrice,
		RiskDollars: riskDollars,
		EntryTime:   entryBar.Time,
		RangeSize:   instance.Window.Size(),
	}

	// Resolution search over the bars after entry.
	for i := entryIdx + 1; i < len(instance.Bars); i++ {
		bar := instance.Bars[i]
		stopHit, targetHit := barCrossings(bar, direction, levels)

		switch {
		case stopHit:
			// Both crossed within the same bar also lands here: the intrabar
			// order is unknowable from OHLC, so the tie always resolves to a
			// loss. This branch is the single source of truth for same-bar
			// ambiguity.
			outcome.Kind = types.OutcomeLoss
			outcome.RRealized = -1.0
			outcome.BarsToResolution = i - entryIdx

			return outcome, nil
		case targetHit:
			outcome.Kind = types.OutcomeWin
			outcome.RRealized = rewardDollars / riskDollars
			outcome.BarsToResolution = i - entryIdx

			return outcome, nil
		}
	}

	// Neither level crossed before the series ended.
	outcome.Kind = types.OutcomeOpen
	outcome.RRealized = 0
	outcome.BarsToResolution = len(instance.Bars) - 1 - entryIdx

	return outcome, nil
}

// EvaluateExcursion classifies an instance from its MAE/MFE summary. The
// semantics mirror the bar path: target hit iff MFE reaches the target
// distance, stop hit iff MAE reaches the stop distance, and crossing both
// thresholds resolves to a loss by the same tie-break.
func (e *Evaluator) EvaluateExcursion(instance types.RangeInstance, spec types.TradeSpec) (types.TradeOutcome, error) {
	if !instance.Window.Tradeable() {
		return e.noTrade(instance), nil
	}

	if instance.Excursion.IsNone() {
		return types.TradeOutcome{}, errors.Newf(errors.ErrCodeMissingExcursions,
			"instance %s has no excursion data", instance.ID)
	}

	excursion := instance.Excursion.Unwrap()
	basis := spec.StopFraction * instance.Window.Size()
	targetDistance := spec.RewardRisk * basis

	riskDollars, rewardDollars := e.costModel.EmbedCost(basis, targetDistance, e.pointValue)
	if riskDollars <= 0 {
		return e.noTrade(instance), nil
	}

	outcome := types.TradeOutcome{
		InstanceID:  instance.ID,
		Direction:   types.DirectionNone,
		RiskDollars: riskDollars,
		EntryTime:   instance.ClosedAt,
		RangeSize:   instance.Window.Size(),
	}

	stopHit := excursion.MAE <= -basis
	targetHit := excursion.MFE >= targetDistance

	switch {
	case stopHit:
		outcome.Kind = types.OutcomeLoss
		outcome.RRealized = -1.0
	case targetHit:
		outcome.Kind = types.OutcomeWin
		outcome.RRealized = rewardDollars / riskDollars
	default:
		outcome.Kind = types.OutcomeOpen
		outcome.RRealized = 0
	}

	return outcome, nil
}

// barCrossings tests whether a bar's range crosses the stop and/or target.
func barCrossings(bar types.Bar, direction types.Direction, levels tradeLevels) (stopHit bool, targetHit bool) {
	if direction == types.DirectionUp {
		return bar.Low <= levels.stopPrice, bar.High >= levels.targetPrice
	}

	return bar.High >= levels.stopPrice, bar.Low <= levels.targetPrice
}

// noTrade builds the outcome for an instance where no position was taken.
// Under the charge-no-trade policy the friction is booked against the full
// structural range basis, reflecting an "assume attempted and failed"
// bookkeeping stance.
func (e *Evaluator) noTrade(instance types.RangeInstance) types.TradeOutcome {
	outcome := types.TradeOutcome{
		InstanceID: instance.ID,
		Kind:       types.OutcomeNoTrade,
		Direction:  types.DirectionNone,
		RRealized:  0,
		EntryTime:  instance.ClosedAt,
		RangeSize:  instance.Window.Size(),
	}

	if e.chargeNoTradeFriction && instance.Window.Tradeable() {
		riskDollars, _ := e.costModel.EmbedCost(instance.Window.Size(), 0, e.pointValue)
		if riskDollars > 0 {
			outcome.RRealized = -e.costModel.FrictionDollars() / riskDollars
			outcome.RiskDollars = riskDollars
		}
	}

	return outcome
}
