package types

// AggregateMetrics is the pure reduction of a sequence of trade outcomes.
// It is recomputed fresh from the outcome sequence on every call and never
// updated incrementally.
type AggregateMetrics struct {
	// NumberOfTrades counts terminal win/loss outcomes only.
	NumberOfTrades int `yaml:"n_trades" json:"n_trades"`
	// NumberOfWins counts winning trades.
	NumberOfWins int `yaml:"n_wins" json:"n_wins"`
	// NumberOfLosses counts losing trades.
	NumberOfLosses int `yaml:"n_losses" json:"n_losses"`
	// NumberOfNoTrades counts instances where no entry was taken. Excluded
	// from the win/loss denominator but reported.
	NumberOfNoTrades int `yaml:"n_no_trades" json:"n_no_trades"`
	// NumberOfOpen counts positions still active at the scan boundary.
	// Excluded from the denominator, not counted as losses.
	NumberOfOpen int `yaml:"n_open" json:"n_open"`
	// WinRate is wins / (wins + losses).
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// AvgR is the mean cost-adjusted risk multiple over win/loss trades.
	AvgR float64 `yaml:"avg_r" json:"avg_r"`
	// TotalR is the summed cost-adjusted risk multiple.
	TotalR float64 `yaml:"total_r" json:"total_r"`
	// MaxDrawdownR is the largest peak-to-trough fall of the cumulative R
	// curve walked in chronological order.
	MaxDrawdownR float64 `yaml:"max_drawdown_r" json:"max_drawdown_r"`
	// ProfitFactor is gross positive R over absolute gross negative R.
	// Reported as the ProfitFactorSentinel when there are no losses.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	// SharpeLike is avg R over the standard deviation of R.
	SharpeLike float64 `yaml:"sharpe_like" json:"sharpe_like"`
	// ConcentratedKind is set when at least 95% of all evaluated outcomes
	// share a single kind, so a degenerate distribution cannot pass silently.
	ConcentratedKind OutcomeKind `yaml:"concentrated_kind,omitempty" json:"concentrated_kind,omitempty"`
}

// ProfitFactorSentinel is reported instead of infinity when a trade set has
// gross losses of zero.
const ProfitFactorSentinel = 999.0
