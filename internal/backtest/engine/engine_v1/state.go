package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/tradeforge/rangebreak/internal/logger"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
	"go.uber.org/zap"
)

// BacktestState persists evaluated trade outcomes for a run into an
// in-memory DuckDB table, so the dashboard layer can query them and the
// engine can export them alongside the YAML results.
type BacktestState struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewBacktestState opens the in-memory outcome store.
func NewBacktestState(log *logger.Logger) (*BacktestState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to open outcome store", err)
	}

	return &BacktestState{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the outcomes table.
func (b *BacktestState) Initialize() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS outcomes (
			run_id TEXT,
			instance_id TEXT,
			kind TEXT,
			direction TEXT,
			r_realized DOUBLE,
			entry_price DOUBLE,
			stop_price DOUBLE,
			target_price DOUBLE,
			risk_dollars DOUBLE,
			bars_to_resolution INTEGER,
			entry_time TIMESTAMP,
			range_size DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to create outcomes table", err)
	}

	return nil
}

// RecordOutcomes inserts the evaluated outcomes of one run.
func (b *BacktestState) RecordOutcomes(runID string, outcomes []types.TradeOutcome) error {
	tx, err := b.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}

	for _, outcome := range outcomes {
		insertQuery := b.sq.
			Insert("outcomes").
			Columns(
				"run_id", "instance_id", "kind", "direction", "r_realized",
				"entry_price", "stop_price", "target_price", "risk_dollars",
				"bars_to_resolution", "entry_time", "range_size",
			).
			Values(
				runID, outcome.InstanceID, string(outcome.Kind), string(outcome.Direction), outcome.RRealized,
				outcome.EntryPrice, outcome.StopPrice, outcome.TargetPrice, outcome.RiskDollars,
				outcome.BarsToResolution, outcome.EntryTime, outcome.RangeSize,
			)

		query, args, err := insertQuery.ToSql()
		if err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build insert query", err)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert outcome", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit outcomes", err)
	}

	return nil
}

// GetOutcomes reads back the outcomes of one run in entry-time order.
func (b *BacktestState) GetOutcomes(runID string) ([]types.TradeOutcome, error) {
	selectQuery := b.sq.
		Select(
			"instance_id", "kind", "direction", "r_realized",
			"entry_price", "stop_price", "target_price", "risk_dollars",
			"bars_to_resolution", "entry_time", "range_size",
		).
		From("outcomes").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("entry_time").
		RunWith(b.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query outcomes", err)
	}
	defer rows.Close()

	var outcomes []types.TradeOutcome

	for rows.Next() {
		var outcome types.TradeOutcome

		var kind, direction string

		if err := rows.Scan(
			&outcome.InstanceID, &kind, &direction, &outcome.RRealized,
			&outcome.EntryPrice, &outcome.StopPrice, &outcome.TargetPrice, &outcome.RiskDollars,
			&outcome.BarsToResolution, &outcome.EntryTime, &outcome.RangeSize,
		); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan outcome", err)
		}

		outcome.Kind = types.OutcomeKind(kind)
		outcome.Direction = types.Direction(direction)
		outcomes = append(outcomes, outcome)
	}

	return outcomes, rows.Err()
}

// CountByKind returns per-kind outcome counts for one run.
func (b *BacktestState) CountByKind(runID string) (map[types.OutcomeKind]int, error) {
	selectQuery := b.sq.
		Select("kind", "COUNT(*)").
		From("outcomes").
		Where(squirrel.Eq{"run_id": runID}).
		GroupBy("kind").
		RunWith(b.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count outcomes", err)
	}
	defer rows.Close()

	counts := make(map[types.OutcomeKind]int)

	for rows.Next() {
		var kind string

		var count int

		if err := rows.Scan(&kind, &count); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan count", err)
		}

		counts[types.OutcomeKind(kind)] = count
	}

	return counts, rows.Err()
}

// Write exports the outcomes table to a Parquet file in the given directory.
func (b *BacktestState) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create results directory", err)
	}

	outcomesPath := filepath.Join(path, "outcomes.parquet")

	_, err := b.db.Exec(fmt.Sprintf(`COPY outcomes TO '%s' (FORMAT PARQUET)`, outcomesPath))
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to export outcomes to Parquet", err)
	}

	b.log.Info("exported outcomes",
		zap.String("path", outcomesPath),
	)

	return nil
}

// Cleanup drops and recreates the outcomes table.
func (b *BacktestState) Cleanup() error {
	if _, err := b.db.Exec(`DROP TABLE IF EXISTS outcomes;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to cleanup outcomes table", err)
	}

	return b.Initialize()
}

// Close releases the underlying database.
func (b *BacktestState) Close() error {
	return b.db.Close()
}
