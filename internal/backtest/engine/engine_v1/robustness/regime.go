package robustness

import (
	"fmt"
	"sort"

	"github.com/tradeforge/rangebreak/internal/types"
)

// Stratify partitions terminal trades by independent covariates computed at
// signal time only (day of week, month, range-size quartile), recomputes
// avg R per partition, and checks edge consistency across conditions.
//
// The check passes when no partition holding at least MinSampleSize trades
// has negative avg R. Smaller partitions are reported as inconclusive:
// insufficient evidence, not evidence of failure.
func Stratify(trades []types.TradeOutcome, cfg ValidationConfig) (map[string]types.RegimeSplit, bool, []string) {
	partitions := make(map[string][]float64)

	quartileOf := rangeSizeQuartiles(trades)

	for i, trade := range trades {
		labels := []string{
			"dow_" + trade.EntryTime.Weekday().String(),
			"month_" + trade.EntryTime.Month().String(),
			fmt.Sprintf("range_q%d", quartileOf[i]),
		}

		for _, label := range labels {
			partitions[label] = append(partitions[label], trade.RRealized)
		}
	}

	splits := make(map[string]types.RegimeSplit, len(partitions))
	pass := true

	var warnings []string

	for label, rValues := range partitions {
		split := types.RegimeSplit{
			AvgR:         mean(rValues),
			N:            len(rValues),
			Inconclusive: len(rValues) < cfg.MinSampleSize,
		}
		splits[label] = split

		if split.AvgR >= 0 {
			continue
		}

		if split.Inconclusive {
			warnings = append(warnings, fmt.Sprintf("regime partition %q negative on %d trades (below minimum %d)",
				label, split.N, cfg.MinSampleSize))
		} else {
			pass = false
		}
	}

	return splits, pass, warnings
}

// rangeSizeQuartiles assigns each trade the quartile (1..4) of its range
// size within the trade set. The range size is known when the window
// closes, so the covariate carries no lookahead.
func rangeSizeQuartiles(trades []types.TradeOutcome) []int {
	quartiles := make([]int, len(trades))
	if len(trades) == 0 {
		return quartiles
	}

	sizes := make([]float64, len(trades))
	for i, trade := range trades {
		sizes[i] = trade.RangeSize
	}

	sorted := make([]float64, len(sizes))
	copy(sorted, sizes)
	sort.Float64s(sorted)

	q1 := sorted[len(sorted)/4]
	q2 := sorted[len(sorted)/2]
	q3 := sorted[(3*len(sorted))/4]

	for i, size := range sizes {
		switch {
		case size <= q1:
			quartiles[i] = 1
		case size <= q2:
			quartiles[i] = 2
		case size <= q3:
			quartiles[i] = 3
		default:
			quartiles[i] = 4
		}
	}

	return quartiles
}
