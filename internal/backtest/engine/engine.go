package engine

import (
	"context"

	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/datasource"
	"github.com/tradeforge/rangebreak/internal/types"
)

// Lifecycle callback types for backtest phases.
// Callbacks returning an error abort execution.

// OnSweepStartCallback is called once before the configuration sweep begins.
type OnSweepStartCallback func(totalConfigurations int, totalInstances int) error

// OnRunStartCallback is called when one configuration starts evaluating.
// runID is the unique identifier generated for the run.
type OnRunStartCallback func(runID string, configIndex int, spec types.TradeSpec) error

// OnRunEndCallback is called when one configuration finishes.
type OnRunEndCallback func(configIndex int, result types.BacktestResult)

// OnProcessDataCallback is called for each range instance evaluated.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest
// engine. Nil fields mean no callback is invoked.
type LifecycleCallbacks struct {
	OnSweepStart  *OnSweepStartCallback
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnProcessData *OnProcessDataCallback
}

// Engine evaluates breakout configurations over historical range instances
// and reports aggregate metrics plus a robustness verdict per configuration.
type Engine interface {
	// Initialize the engine with the given YAML configuration content.
	Initialize(config string) error
	// SetDataSource sets the range instance source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// SetDataPath points the data source at a data file.
	SetDataPath(path string) error
	// SetResultsFolder sets the output directory for run artifacts.
	SetResultsFolder(folder string) error
	// Run evaluates the full stop-fraction x reward:risk sweep. The context
	// cancels the sweep between configurations, never mid-evaluation, so
	// partial results stay consistent.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// GetResults returns the result records of the last completed run.
	GetResults() []types.BacktestResult
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
