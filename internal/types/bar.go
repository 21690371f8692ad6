package types

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/tradeforge/rangebreak/pkg/errors"
)

// Bar is a single OHLC bar.
type Bar struct {
	Time  time.Time `csv:"time" yaml:"time"`
	Open  float64   `csv:"open" yaml:"open"`
	High  float64   `csv:"high" yaml:"high"`
	Low   float64   `csv:"low" yaml:"low"`
	Close float64   `csv:"close" yaml:"close"`
}

// Validate checks a single bar for NaN prices and an inverted high/low.
func (b Bar) Validate() error {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeMalformedBar, "bar at %s has non-finite price", b.Time)
		}
	}

	if b.High < b.Low {
		return errors.Newf(errors.ErrCodeMalformedBar, "bar at %s has high %f below low %f", b.Time, b.High, b.Low)
	}

	return nil
}

// BarSeries is an ordered sequence of bars, strictly increasing in time.
// It is owned by the data layer and borrowed read-only by the evaluator.
type BarSeries []Bar

// Validate checks every bar and the strict time ordering of the series.
func (s BarSeries) Validate() error {
	for i, bar := range s {
		if err := bar.Validate(); err != nil {
			return err
		}

		if i > 0 && !s[i-1].Time.Before(bar.Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicSeries,
				"bar at index %d (%s) is not strictly after its predecessor (%s)", i, bar.Time, s[i-1].Time)
		}
	}

	return nil
}

// RangeWindow is the high/low boundary established during a fixed prior
// time interval, used as the breakout reference.
type RangeWindow struct {
	High float64 `csv:"range_high" yaml:"high"`
	Low  float64 `csv:"range_low" yaml:"low"`
}

// Size returns the point distance between the window edges.
func (w RangeWindow) Size() float64 {
	return w.High - w.Low
}

// Tradeable reports whether the window can anchor a trade. A non-positive
// size makes the instance non-tradeable.
func (w RangeWindow) Tradeable() bool {
	return w.Size() > 0 && !math.IsNaN(w.Size())
}

// Excursion is the precomputed MAE/MFE summary of price action after entry.
// MAE is signed against the trade (a value of -0.5 means price moved 0.5
// points against the position); MFE is the best favorable move in points.
type Excursion struct {
	MAE float64 `csv:"mae" yaml:"mae"`
	MFE float64 `csv:"mfe" yaml:"mfe"`
}

// RangeInstance is one historical occurrence of the range plus the price
// action that followed it. Either Bars or Excursion is populated; the
// excursion path is a cheaper-to-query substitute for bar-by-bar replay.
type RangeInstance struct {
	// ID identifies the instance within its data set.
	ID string
	// Symbol is the instrument the range belongs to.
	Symbol string
	// Window holds the range boundaries.
	Window RangeWindow
	// ClosedAt is the time the range window closed; bars cover the period
	// after this until the session boundary.
	ClosedAt time.Time
	// Bars is the subsequent price action. Empty when Excursion is supplied.
	Bars BarSeries
	// Excursion is the optional precomputed MAE/MFE alternative to Bars.
	Excursion optional.Option[Excursion]
}
