package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Verdict is the combined robustness judgment for one configuration.
type Verdict string

const (
	// VerdictApproved means every hard check passed with at most the
	// configured number of soft warnings.
	VerdictApproved Verdict = "APPROVED"
	// VerdictMarginal means every hard check passed but soft warnings
	// exceeded the configured budget.
	VerdictMarginal Verdict = "MARGINAL"
	// VerdictRejected means at least one hard check failed.
	VerdictRejected Verdict = "REJECTED"
)

// WalkForwardResult holds the chronological train/test split evidence.
type WalkForwardResult struct {
	TrainAvgR   float64 `yaml:"train_avg_r" json:"train_avg_r"`
	TestAvgR    float64 `yaml:"test_avg_r" json:"test_avg_r"`
	Delta       float64 `yaml:"delta" json:"delta"`
	TrainTrades int     `yaml:"train_trades" json:"train_trades"`
	TestTrades  int     `yaml:"test_trades" json:"test_trades"`
	Pass        bool    `yaml:"pass" json:"pass"`
}

// MonteCarloResult holds the bootstrap percentiles of mean R and the
// permutation percentiles of max drawdown.
type MonteCarloResult struct {
	P5          float64 `yaml:"p5" json:"p5"`
	P50         float64 `yaml:"p50" json:"p50"`
	P95         float64 `yaml:"p95" json:"p95"`
	DrawdownP95 float64 `yaml:"drawdown_p95" json:"drawdown_p95"`
	Seed        int64   `yaml:"seed" json:"seed"`
	Draws       int     `yaml:"draws" json:"draws"`
	Pass        bool    `yaml:"pass" json:"pass"`
}

// RegimeSplit is the per-partition evidence of one regime label.
type RegimeSplit struct {
	AvgR float64 `yaml:"avg_r" json:"avg_r"`
	N    int     `yaml:"n" json:"n"`
	// Inconclusive marks partitions below the minimum sample size. They are
	// reported but never used to fail the check.
	Inconclusive bool `yaml:"inconclusive" json:"inconclusive"`
}

// CostStressResult reports the friction multiplier at which the edge breaks.
type CostStressResult struct {
	// BreakpointMultiplier is the lowest stress multiplier at which avg R
	// fell below the configured floor. Zero means no tested multiplier broke
	// the edge.
	BreakpointMultiplier float64 `yaml:"breakpoint_multiplier" json:"breakpoint_multiplier"`
	// AvgRByMultiplier records avg R at each tested multiplier.
	AvgRByMultiplier map[string]float64 `yaml:"avg_r_by_multiplier" json:"avg_r_by_multiplier"`
	Pass             bool               `yaml:"pass" json:"pass"`
}

// RobustnessReport aggregates the four independent checks.
type RobustnessReport struct {
	WalkForward  WalkForwardResult      `yaml:"walk_forward" json:"walk_forward"`
	MonteCarlo   MonteCarloResult       `yaml:"monte_carlo" json:"monte_carlo"`
	RegimeSplits map[string]RegimeSplit `yaml:"regime_splits" json:"regime_splits"`
	CostStress   CostStressResult       `yaml:"cost_stress" json:"cost_stress"`
	// SoftWarnings lists non-fatal findings that can downgrade the verdict
	// to marginal.
	SoftWarnings []string `yaml:"soft_warnings,omitempty" json:"soft_warnings,omitempty"`
	Verdict      Verdict  `yaml:"verdict" json:"verdict"`
}

// BacktestResult is the full record for one evaluated configuration.
// The orchestrator always returns a typed result: Evaluated distinguishes
// "could not evaluate" from "evaluated, verdict is negative".
type BacktestResult struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol of the backtested instrument.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Config is the trade spec this result belongs to.
	Config TradeSpec `yaml:"config" json:"config"`
	// Evaluated is false when the configuration could not be evaluated at
	// all (e.g. every instance was excluded).
	Evaluated bool `yaml:"evaluated" json:"evaluated"`
	// Metrics are the aggregate performance numbers.
	Metrics AggregateMetrics `yaml:"metrics" json:"metrics"`
	// Robustness is the four-check report with its verdict.
	Robustness RobustnessReport `yaml:"robustness" json:"robustness"`
	// ExcludedInstances counts instances dropped for malformed data.
	ExcludedInstances int `yaml:"excluded_instances" json:"excluded_instances"`
	// OutcomesFilePath is the path to the persisted outcome database.
	OutcomesFilePath string `yaml:"outcomes_file_path,omitempty" json:"outcomes_file_path,omitempty"`
}

// WriteBacktestResults writes result records to a YAML file.
func WriteBacktestResults(path string, results []BacktestResult) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest results to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest results to file: %w", err)
	}

	return nil
}

// ReadBacktestResults reads result records from a YAML file.
func ReadBacktestResults(path string) ([]BacktestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backtest results file: %w", err)
	}

	var results []BacktestResult
	if err := yaml.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backtest results: %w", err)
	}

	return results, nil
}
