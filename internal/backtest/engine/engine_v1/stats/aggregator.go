// Package stats reduces evaluated trade outcomes into aggregate metrics.
package stats

import (
	"math"

	"github.com/tradeforge/rangebreak/internal/types"
)

// concentrationThreshold flags a distribution where one outcome kind
// dominates all evaluated instances.
const concentrationThreshold = 0.95

// Aggregate reduces a chronologically ordered outcome sequence into
// aggregate metrics. The reduction is pure: it never mutates its input and
// is recomputed fresh on every call.
//
// Win/loss outcomes define the win-rate denominator. No-trade and open
// outcomes are excluded from it and reported as counts. A no-trade outcome
// carrying a non-zero R (the explicit charge-no-trade friction policy) still
// contributes to AvgR and TotalR, since that is the point of the policy.
func Aggregate(outcomes []types.TradeOutcome) types.AggregateMetrics {
	metrics := types.AggregateMetrics{}
	kindCounts := make(map[types.OutcomeKind]int)

	rValues := make([]float64, 0, len(outcomes))

	for _, outcome := range outcomes {
		kindCounts[outcome.Kind]++

		switch outcome.Kind {
		case types.OutcomeWin:
			metrics.NumberOfWins++

			rValues = append(rValues, outcome.RRealized)
		case types.OutcomeLoss:
			metrics.NumberOfLosses++

			rValues = append(rValues, outcome.RRealized)
		case types.OutcomeNoTrade:
			metrics.NumberOfNoTrades++

			if outcome.RRealized != 0 {
				rValues = append(rValues, outcome.RRealized)
			}
		case types.OutcomeOpen:
			metrics.NumberOfOpen++
		}
	}

	metrics.NumberOfTrades = metrics.NumberOfWins + metrics.NumberOfLosses

	if metrics.NumberOfTrades > 0 {
		metrics.WinRate = float64(metrics.NumberOfWins) / float64(metrics.NumberOfTrades)
	}

	var grossProfit, grossLoss float64

	for _, r := range rValues {
		metrics.TotalR += r

		if r > 0 {
			grossProfit += r
		} else {
			grossLoss += -r
		}
	}

	if len(rValues) > 0 {
		metrics.AvgR = metrics.TotalR / float64(len(rValues))
	}

	metrics.MaxDrawdownR = MaxDrawdown(rValues)

	switch {
	case grossLoss > 0:
		metrics.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		metrics.ProfitFactor = types.ProfitFactorSentinel
	}

	metrics.SharpeLike = sharpeLike(rValues, metrics.AvgR)
	metrics.ConcentratedKind = concentratedKind(kindCounts, len(outcomes))

	return metrics
}

// MaxDrawdown walks the R sequence in its original chronological order,
// tracking the running cumulative sum and its running peak. The reported
// value is the maximum peak-to-trough fall.
func MaxDrawdown(rValues []float64) float64 {
	var cumulative, peak, maxDD float64

	for _, r := range rValues {
		cumulative += r

		if cumulative > peak {
			peak = cumulative
		}

		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}

// sharpeLike is mean R over the population standard deviation of R.
func sharpeLike(rValues []float64, avgR float64) float64 {
	if len(rValues) < 2 {
		return 0
	}

	var sumSq float64

	for _, r := range rValues {
		diff := r - avgR

		sumSq += diff * diff
	}

	std := math.Sqrt(sumSq / float64(len(rValues)))
	if std == 0 {
		return 0
	}

	return avgR / std
}

// concentratedKind reports the kind holding at least 95% of all evaluated
// outcomes, so a degenerate distribution surfaces upstream instead of
// silently dominating.
func concentratedKind(kindCounts map[types.OutcomeKind]int, total int) types.OutcomeKind {
	if total == 0 {
		return ""
	}

	for kind, count := range kindCounts {
		if float64(count)/float64(total) >= concentrationThreshold {
			return kind
		}
	}

	return ""
}
