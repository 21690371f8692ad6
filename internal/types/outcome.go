package types

import "time"

// OutcomeKind classifies a single evaluated range instance.
type OutcomeKind string

const (
	// OutcomeWin means the profit target was crossed before the stop.
	OutcomeWin OutcomeKind = "win"
	// OutcomeLoss means the stop was crossed before the target, or both
	// were crossed within the same bar (conservative tie-break).
	OutcomeLoss OutcomeKind = "loss"
	// OutcomeNoTrade means no breakout entry was found, or the trade was
	// rejected (non-tradeable window, degenerate risk after cost embedding).
	OutcomeNoTrade OutcomeKind = "no_trade"
	// OutcomeOpen means a position was entered but neither stop nor target
	// was crossed before the series ended.
	OutcomeOpen OutcomeKind = "open"
)

// AllOutcomeKinds lists every terminal classification.
var AllOutcomeKinds = []OutcomeKind{
	OutcomeWin,
	OutcomeLoss,
	OutcomeNoTrade,
	OutcomeOpen,
}

// IsTerminalTrade reports whether the outcome enters the win/loss
// denominator of aggregate statistics.
func (k OutcomeKind) IsTerminalTrade() bool {
	return k == OutcomeWin || k == OutcomeLoss
}

// Direction is the breakout direction taken at entry.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionNone Direction = "none"
)

// TradeOutcome is the result of evaluating one range instance against one
// trade spec. Created once per evaluation and never mutated afterwards.
type TradeOutcome struct {
	// InstanceID identifies the range instance that produced this outcome.
	InstanceID string `csv:"instance_id" yaml:"instance_id"`
	// Kind is the terminal classification.
	Kind OutcomeKind `csv:"kind" yaml:"kind"`
	// Direction is the breakout direction, or none for no-trade outcomes.
	Direction Direction `csv:"direction" yaml:"direction"`
	// RRealized is the cost-adjusted risk multiple. This is the only R value
	// fed into aggregation and robustness checks.
	RRealized float64 `csv:"r_realized" yaml:"r_realized"`
	// EntryPrice is the fill price of the breakout entry.
	EntryPrice float64 `csv:"entry_price" yaml:"entry_price"`
	// StopPrice is the protective stop level.
	StopPrice float64 `csv:"stop_price" yaml:"stop_price"`
	// TargetPrice is the profit target level.
	TargetPrice float64 `csv:"target_price" yaml:"target_price"`
	// RiskDollars is the cost-embedded dollar risk the trade was sized on.
	RiskDollars float64 `csv:"risk_dollars" yaml:"risk_dollars"`
	// BarsToResolution counts bars from entry to the terminal bar.
	BarsToResolution int `csv:"bars_to_resolution" yaml:"bars_to_resolution"`
	// EntryTime is the time of the entry bar, used for chronological ordering
	// and signal-time regime covariates.
	EntryTime time.Time `csv:"entry_time" yaml:"entry_time"`
	// RangeSize is the point size of the window, recorded at signal time.
	RangeSize float64 `csv:"range_size" yaml:"range_size"`
}
