package engine

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tradeforge/rangebreak/internal/backtest/engine"
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/costmodel"
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/datasource"
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/evaluator"
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/robustness"
	"github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1/stats"
	"github.com/tradeforge/rangebreak/internal/logger"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// BacktestEngineV1 runs the full stop-fraction x reward:risk sweep over a
// data source of range instances and validates every configuration's
// aggregate edge for robustness.
type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	initialized   bool
	dataSource    datasource.DataSource
	resultsFolder string
	state         *BacktestState
	log           *logger.Logger
	results       []types.BacktestResult
}

// NewBacktestEngineV1 creates an uninitialized engine.
func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		log: logger.NewNopLogger(),
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	engineConfig := EmptyConfig()
	if err := yaml.Unmarshal([]byte(config), &engineConfig); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine config", err)
	}

	if err := engineConfig.Validate(); err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to create logger", err)
	}

	state, err := NewBacktestState(log)
	if err != nil {
		return err
	}

	if err := state.Initialize(); err != nil {
		return err
	}

	b.config = engineConfig
	b.log = log
	b.state = state
	b.initialized = true

	b.log.Debug("initialized backtest engine",
		zap.String("symbol", engineConfig.Symbol),
		zap.Int("stop_fractions", len(engineConfig.StopFractions)),
		zap.Int("reward_risks", len(engineConfig.RewardRisks)),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(dataSource datasource.DataSource) error {
	b.dataSource = dataSource

	return nil
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	if b.dataSource == nil {
		source, err := datasource.NewDuckDBDataSource(":memory:", b.log)
		if err != nil {
			return err
		}

		b.dataSource = source
	}

	return b.dataSource.Initialize(path)
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder

	return nil
}

// GetResults implements engine.Engine.
func (b *BacktestEngineV1) GetResults() []types.BacktestResult {
	return b.results
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := EmptyConfig()

	return config.GenerateSchemaJSON()
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		return errors.New(errors.ErrCodeEngineInitFailed, "engine is not initialized")
	}

	if b.dataSource == nil {
		return errors.New(errors.ErrCodeEngineNoDatasource, "no data source configured")
	}

	if b.resultsFolder == "" {
		return errors.New(errors.ErrCodeEngineNoResultsDir, "no results folder configured")
	}

	if len(b.config.StopFractions) == 0 || len(b.config.RewardRisks) == 0 {
		return errors.New(errors.ErrCodeEngineNoSweep, "sweep grid is empty")
	}

	return nil
}

// Run implements engine.Engine. Configurations are independent of each
// other, so the sweep optionally fans out over a bounded worker pool. Each
// worker owns its evaluator and validator; the only shared sink is the
// outcome store, which serializes access itself. Cancellation is honored
// between configurations only, never mid-evaluation.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) error {
	if err := b.preRunCheck(); err != nil {
		return err
	}

	instances, err := b.loadInstances()
	if err != nil {
		return err
	}

	specs := b.config.Specs()

	if callbacks.OnSweepStart != nil {
		if err := (*callbacks.OnSweepStart)(len(specs), len(instances)); err != nil {
			return err
		}
	}

	results := make([]types.BacktestResult, len(specs))

	parallelism := b.config.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	if parallelism > len(specs) {
		parallelism = len(specs)
	}

	// Buffered so the dispatcher never blocks on a worker that bailed out.
	specIndexes := make(chan int, len(specs))
	errCh := make(chan error, len(specs))

	var wg sync.WaitGroup

	for w := 0; w < parallelism; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range specIndexes {
				// Cancellation is only honored between configurations, so a
				// partially evaluated configuration is never recorded.
				if ctx.Err() != nil {
					continue
				}

				result, err := b.runConfiguration(idx, specs[idx], instances, callbacks)
				if err != nil {
					errCh <- err

					return
				}

				results[idx] = result

				if callbacks.OnRunEnd != nil {
					(*callbacks.OnRunEnd)(idx, result)
				}
			}
		}()
	}

	for idx := range specs {
		specIndexes <- idx
	}

	close(specIndexes)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		return errors.Wrap(errors.ErrCodeRunCancelled, "sweep cancelled", ctx.Err())
	}

	b.results = results

	return b.writeResults()
}

// loadInstances materializes the bounded instance stream. The sweep
// re-reads the same instances once per configuration, so a single pass
// through the data source amortizes over the whole grid.
func (b *BacktestEngineV1) loadInstances() ([]types.RangeInstance, error) {
	var instances []types.RangeInstance

	for instance, err := range b.dataSource.ReadAll(b.config.StartTime, b.config.EndTime) {
		if err != nil {
			return nil, err
		}

		instances = append(instances, instance)
	}

	if len(instances) == 0 {
		return nil, errors.New(errors.ErrCodeDataNotFound, "data source yielded no range instances")
	}

	return instances, nil
}

// runConfiguration evaluates every instance under one trade spec,
// aggregates the outcomes, and runs the robustness checks.
func (b *BacktestEngineV1) runConfiguration(configIndex int, spec types.TradeSpec, instances []types.RangeInstance, callbacks engine.LifecycleCallbacks) (types.BacktestResult, error) {
	runID := uuid.New().String()

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, configIndex, spec); err != nil {
			return types.BacktestResult{}, err
		}
	}

	if err := spec.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	baseModel := costmodel.GetCostModel(b.config.CostModel, b.config.FrictionDollars)
	eval := evaluator.NewEvaluator(baseModel, b.config.PointValue, b.config.Validation.ChargeNoTradeFriction, b.log)

	outcomes, excluded := b.evaluateAll(eval, spec, instances, callbacks.OnProcessData)

	result := types.BacktestResult{
		ID:                runID,
		Timestamp:         time.Now().UTC(),
		Symbol:            b.config.Symbol,
		Config:            spec,
		Evaluated:         len(outcomes) > 0,
		Metrics:           stats.Aggregate(outcomes),
		ExcludedInstances: excluded,
	}

	if !result.Evaluated {
		result.Robustness.Verdict = types.VerdictRejected
		result.Robustness.SoftWarnings = []string{"every instance was excluded for malformed data"}

		return result, nil
	}

	validator, err := robustness.NewValidator(b.config.Validation, b.log)
	if err != nil {
		return types.BacktestResult{}, err
	}

	reEvaluate := func(stressMultiplier float64) ([]types.TradeOutcome, error) {
		stressed := eval.WithCostModel(baseModel.WithStress(stressMultiplier))
		stressedOutcomes, _ := b.evaluateAll(stressed, spec, instances, nil)

		return stressedOutcomes, nil
	}

	report, err := validator.Validate(outcomes, reEvaluate)
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeEmptyTradeSequence) {
			return types.BacktestResult{}, err
		}

		// Nothing terminal to validate. The configuration never traded, so
		// there is no edge to approve.
		report.Verdict = types.VerdictRejected
		report.SoftWarnings = append(report.SoftWarnings, "no terminal trades to validate")
	}

	result.Robustness = report

	if err := b.state.RecordOutcomes(runID, outcomes); err != nil {
		return types.BacktestResult{}, err
	}

	b.log.Info("configuration evaluated",
		zap.String("run_id", runID),
		zap.Float64("stop_fraction", spec.StopFraction),
		zap.Float64("reward_risk", spec.RewardRisk),
		zap.String("verdict", string(report.Verdict)),
		zap.Float64("avg_r", result.Metrics.AvgR),
		zap.Int("excluded", excluded),
	)

	return result, nil
}

// evaluateAll classifies every instance under one spec. Data errors exclude
// the instance and the sweep continues; the count of exclusions is surfaced
// on the result rather than hidden in logs.
func (b *BacktestEngineV1) evaluateAll(eval *evaluator.Evaluator, spec types.TradeSpec, instances []types.RangeInstance, onProcess *engine.OnProcessDataCallback) ([]types.TradeOutcome, int) {
	outcomes := make([]types.TradeOutcome, 0, len(instances))
	excluded := 0

	for i, instance := range instances {
		outcome, err := eval.Evaluate(instance, spec)
		if err != nil {
			excluded++

			b.log.Warn("excluding instance",
				zap.String("instance", instance.ID),
				zap.Error(err),
			)
		} else {
			outcomes = append(outcomes, outcome)
		}

		if onProcess != nil {
			if err := (*onProcess)(i+1, len(instances)); err != nil {
				b.log.Warn("process callback failed", zap.Error(err))
			}
		}
	}

	return outcomes, excluded
}

// writeResults persists the sweep results as YAML plus the full outcome
// table as Parquet.
func (b *BacktestEngineV1) writeResults() error {
	folder := b.getBoundedResultFolder()

	if err := b.state.Write(folder); err != nil {
		return err
	}

	outcomesPath := filepath.Join(folder, "outcomes.parquet")
	for i := range b.results {
		b.results[i].OutcomesFilePath = outcomesPath
	}

	resultsPath := filepath.Join(folder, "results.yaml")
	if err := types.WriteBacktestResults(resultsPath, b.results); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write results", err)
	}

	b.log.Info("wrote sweep results",
		zap.String("path", resultsPath),
		zap.Int("configurations", len(b.results)),
	)

	return nil
}
