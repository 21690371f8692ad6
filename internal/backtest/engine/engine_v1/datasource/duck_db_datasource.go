package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/tradeforge/rangebreak/internal/logger"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBDataSource reads range instances from a parquet or CSV file through
// an in-process DuckDB view.
//
// Expected columns: instance_id, symbol, range_high, range_low,
// range_closed_at, and either per-bar rows (bar_time, open, high, low,
// close) or a single excursion row per instance (mae, mfe with NULL bar
// columns).
type DuckDBDataSource struct {
	db  *sql.DB
	log *logger.Logger
}

// NewDuckDBDataSource creates a new DuckDB-backed data source. The path
// parameter is the DuckDB database location; use ":memory:" for a pure
// view over the data file.
func NewDuckDBDataSource(path string, log *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:  db,
		log: log,
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.log.Debug("initializing duckdb data source", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS range_data;`); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to drop existing view", err)
	}

	reader := "read_parquet"
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		reader = "read_csv_auto"
	}

	// CREATE VIEW has no placeholder support; the path comes from the
	// engine config, not user row data.
	query := fmt.Sprintf(`CREATE VIEW range_data AS SELECT * FROM %s('%s');`, reader, path)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create view over %s", path)
	}

	return nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query := "SELECT COUNT(DISTINCT instance_id) FROM range_data"
	where, params := timeBounds(start, end)
	query += where

	var count int
	if err := d.db.QueryRow(query, params...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count range instances", err)
	}

	return count, nil
}

// ReadAll implements DataSource. Rows are streamed ordered by window close
// time and assembled into instances as the instance id changes.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.RangeInstance, error) bool) {
	return func(yield func(types.RangeInstance, error) bool) {
		query := `
			SELECT instance_id, symbol, range_high, range_low, range_closed_at,
			       bar_time, open, high, low, close, mae, mfe
			FROM range_data
		`
		where, params := timeBounds(start, end)
		query += where + " ORDER BY range_closed_at, instance_id, bar_time"

		rows, err := d.db.Query(query, params...)
		if err != nil {
			yield(types.RangeInstance{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query range data", err))

			return
		}
		defer rows.Close()

		var current *types.RangeInstance

		for rows.Next() {
			var (
				instanceID, symbol       string
				rangeHigh, rangeLow      float64
				closedAt                 time.Time
				barTime                  sql.NullTime
				open, high, low, closePx sql.NullFloat64
				mae, mfe                 sql.NullFloat64
			)

			if err := rows.Scan(&instanceID, &symbol, &rangeHigh, &rangeLow, &closedAt,
				&barTime, &open, &high, &low, &closePx, &mae, &mfe); err != nil {
				yield(types.RangeInstance{}, errors.Wrap(errors.ErrCodeMalformedBar, "failed to scan range data row", err))

				return
			}

			if current == nil || current.ID != instanceID {
				if current != nil && !yield(*current, nil) {
					return
				}

				current = &types.RangeInstance{
					ID:     instanceID,
					Symbol: symbol,
					Window: types.RangeWindow{
						High: rangeHigh,
						Low:  rangeLow,
					},
					ClosedAt:  closedAt,
					Excursion: optional.None[types.Excursion](),
				}
			}

			switch {
			case barTime.Valid:
				current.Bars = append(current.Bars, types.Bar{
					Time:  barTime.Time,
					Open:  open.Float64,
					High:  high.Float64,
					Low:   low.Float64,
					Close: closePx.Float64,
				})
			case mae.Valid && mfe.Valid:
				current.Excursion = optional.Some(types.Excursion{
					MAE: mae.Float64,
					MFE: mfe.Float64,
				})
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.RangeInstance{}, errors.Wrap(errors.ErrCodeQueryFailed, "row iteration failed", err))

			return
		}

		if current != nil {
			yield(*current, nil)
		}
	}
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

func timeBounds(start optional.Option[time.Time], end optional.Option[time.Time]) (string, []any) {
	var clauses []string

	var params []any

	if start.IsSome() {
		clauses = append(clauses, fmt.Sprintf("range_closed_at >= $%d", len(params)+1))
		params = append(params, start.Unwrap())
	}

	if end.IsSome() {
		clauses = append(clauses, fmt.Sprintf("range_closed_at <= $%d", len(params)+1))
		params = append(params, end.Unwrap())
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), params
}
