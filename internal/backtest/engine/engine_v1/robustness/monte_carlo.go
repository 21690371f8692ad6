package robustness

import (
	"math/rand"
	"sort"

	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/stats"
	"github.com/tradeforge/rangebreak/internal/types"
)

// MonteCarlo resamples the realized R values with replacement and reports
// the 5th/50th/95th percentiles of the resampled mean, plus the 95th
// percentile of max drawdown under order permutations. A simple mean is
// order-insensitive, so the bootstrap supplies the confidence interval on
// the mean while the permutations feed the order-sensitive drawdown
// statistic.
//
// The function is pure in (rValues, seed, draws): no global RNG state is
// touched, so a given seed always reproduces identical percentiles.
func MonteCarlo(rValues []float64, seed int64, draws int) types.MonteCarloResult {
	result := types.MonteCarloResult{
		Seed:  seed,
		Draws: draws,
	}

	if len(rValues) == 0 || draws <= 0 {
		return result
	}

	rng := rand.New(rand.NewSource(seed))

	means := make([]float64, draws)
	drawdowns := make([]float64, draws)
	permuted := make([]float64, len(rValues))
	copy(permuted, rValues)

	for i := 0; i < draws; i++ {
		var sum float64

		for j := 0; j < len(rValues); j++ {
			sum += rValues[rng.Intn(len(rValues))]
		}

		means[i] = sum / float64(len(rValues))

		rng.Shuffle(len(permuted), func(a, b int) {
			permuted[a], permuted[b] = permuted[b], permuted[a]
		})
		drawdowns[i] = stats.MaxDrawdown(permuted)
	}

	sort.Float64s(means)
	sort.Float64s(drawdowns)

	result.P5 = percentile(means, 0.05)
	result.P50 = percentile(means, 0.50)
	result.P95 = percentile(means, 0.95)
	result.DrawdownP95 = percentile(drawdowns, 0.95)
	result.Pass = result.P5 >= 0

	return result
}

// percentile interpolates linearly between the two nearest ranks of an
// already sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p * float64(len(sorted)-1)
	lower := int(rank)

	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}

	frac := rank - float64(lower)

	return sorted[lower]*(1-frac) + sorted[lower+1]*frac
}
