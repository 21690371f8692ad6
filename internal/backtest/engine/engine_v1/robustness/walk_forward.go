package robustness

import (
	"math"

	"github.com/tradeforge/rangebreak/internal/types"
)

// WalkForward splits the chronologically ordered trade sequence at the
// configured train ratio, preserving order, and compares out-of-sample
// avg R against in-sample avg R. It catches configurations tuned to fit the
// full history that do not generalize forward in time.
//
// The partition sizes always sum to the input length and the train set is
// strictly earlier in time than the test set.
func WalkForward(rValues []float64, cfg ValidationConfig) types.WalkForwardResult {
	result := types.WalkForwardResult{}
	if len(rValues) < 2 {
		return result
	}

	splitIdx := int(float64(len(rValues)) * cfg.TrainRatio)
	if splitIdx < 1 {
		splitIdx = 1
	}

	if splitIdx >= len(rValues) {
		splitIdx = len(rValues) - 1
	}

	train := rValues[:splitIdx]
	test := rValues[splitIdx:]

	result.TrainTrades = len(train)
	result.TestTrades = len(test)
	result.TrainAvgR = mean(train)
	result.TestAvgR = mean(test)
	result.Delta = result.TestAvgR - result.TrainAvgR

	degradation := result.TrainAvgR - result.TestAvgR

	result.Pass = true
	if degradation > cfg.WalkForwardMaxAbsDelta {
		result.Pass = false
	}

	if result.TrainAvgR > 0 && degradation/math.Abs(result.TrainAvgR) > cfg.WalkForwardMaxRelDelta {
		result.Pass = false
	}

	return result
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64

	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
