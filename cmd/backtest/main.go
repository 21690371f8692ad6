package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/tradeforge/rangebreak/internal/backtest/engine"
	engine_v1 "github.com/tradeforge/rangebreak/internal/backtest/engine/engine_v1"
	"github.com/tradeforge/rangebreak/internal/types"
	"github.com/tradeforge/rangebreak/internal/version"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"
)

// cliConfig mirrors the engine config's YAML shape so flag values can be
// rendered into a config document without touching optional wrappers.
type cliConfig struct {
	Symbol          string     `yaml:"symbol"`
	PointValue      float64    `yaml:"point_value"`
	FrictionDollars float64    `yaml:"friction_dollars"`
	CostModel       string     `yaml:"cost_model"`
	RiskBasis       string     `yaml:"risk_basis"`
	StopFractions   []float64  `yaml:"stop_fractions"`
	RewardRisks     []float64  `yaml:"reward_risks"`
	Parallelism     int        `yaml:"parallelism"`
	StartTime       *time.Time `yaml:"start_time,omitempty"`
	EndTime         *time.Time `yaml:"end_time,omitempty"`
	Validation      *struct {
		MonteCarloSeed int64 `yaml:"monte_carlo_seed"`
	} `yaml:"validation,omitempty"`
}

// buildConfig renders the engine configuration YAML either from a config
// file or from the individual flags.
func buildConfig(cmd *cli.Command) (string, error) {
	if configPath := cmd.String("config"); configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return "", fmt.Errorf("failed to read config file: %w", err)
		}

		return string(content), nil
	}

	config := cliConfig{
		Symbol:          cmd.String("symbol"),
		PointValue:      cmd.Float("point-value"),
		FrictionDollars: cmd.Float("friction"),
		CostModel:       cmd.String("cost-model"),
		RiskBasis:       cmd.String("risk-basis"),
		StopFractions:   cmd.FloatSlice("stop-fraction"),
		RewardRisks:     cmd.FloatSlice("reward-risk"),
		Parallelism:     int(cmd.Int("parallelism")),
	}

	if start := cmd.Timestamp("start"); !start.IsZero() {
		config.StartTime = &start
	}

	if end := cmd.Timestamp("end"); !end.IsZero() {
		config.EndTime = &end
	}

	if cmd.IsSet("seed") {
		config.Validation = &struct {
			MonteCarloSeed int64 `yaml:"monte_carlo_seed"`
		}{MonteCarloSeed: cmd.Int("seed")}
	}

	content, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}

	return string(content), nil
}

// backtestAction runs the full sweep and prints the per-configuration
// summary table.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	config, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	backtester := engine_v1.NewBacktestEngineV1()

	if err := backtester.Initialize(config); err != nil {
		return fmt.Errorf("failed to initialize backtest engine: %w", err)
	}

	if err := backtester.SetDataPath(cmd.String("data")); err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}

	if err := backtester.SetResultsFolder(cmd.String("results")); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onSweepStart := engine.OnSweepStartCallback(func(totalConfigurations int, totalInstances int) error {
		bar = progressbar.Default(int64(totalConfigurations * totalInstances))
		bar.Describe(fmt.Sprintf("Evaluating %d configurations over %d instances", totalConfigurations, totalInstances))

		return nil
	})

	onProcessData := engine.OnProcessDataCallback(func(current int, total int) error {
		if bar != nil {
			return bar.Add(1)
		}

		return nil
	})

	callbacks := engine.LifecycleCallbacks{
		OnSweepStart:  &onSweepStart,
		OnProcessData: &onProcessData,
	}

	if err := backtester.Run(ctx, callbacks); err != nil {
		return fmt.Errorf("backtest run failed: %w", err)
	}

	printResults(backtester.GetResults())

	return nil
}

func printResults(results []types.BacktestResult) {
	fmt.Printf("\n%-8s %-8s %-8s %-9s %-9s %-9s %-9s %-9s %s\n",
		"STOP", "RR", "TRADES", "WIN%", "AVG_R", "TOTAL_R", "MAX_DD", "PF", "VERDICT")

	for _, result := range results {
		if !result.Evaluated {
			fmt.Printf("%-8.2f %-8.2f %-8s not evaluated (%d instances excluded)\n",
				result.Config.StopFraction, result.Config.RewardRisk, "-", result.ExcludedInstances)

			continue
		}

		metrics := result.Metrics
		fmt.Printf("%-8.2f %-8.2f %-8d %-9.1f %-9.3f %-9.2f %-9.2f %-9.2f %s\n",
			result.Config.StopFraction,
			result.Config.RewardRisk,
			metrics.NumberOfTrades,
			metrics.WinRate*100,
			metrics.AvgR,
			metrics.TotalR,
			metrics.MaxDrawdownR,
			metrics.ProfitFactor,
			result.Robustness.Verdict,
		)

		for _, warning := range result.Robustness.SoftWarnings {
			fmt.Printf("         warning: %s\n", warning)
		}
	}
}

// schemaAction prints the JSON schema of the engine configuration.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	backtester := engine_v1.NewBacktestEngineV1()

	schema, err := backtester.GetConfigSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Evaluate breakout trade configurations over historical range instances",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the range instance data file (parquet or CSV)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "symbol",
				Aliases: []string{"t"},
				Usage:   "Instrument symbol",
				Value:   "NQ",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML engine config; overrides the individual flags",
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Results output directory",
				Value:   "results",
			},
			&cli.FloatSliceFlag{
				Name:  "stop-fraction",
				Usage: "Stop distance as a fraction of the range size (repeatable)",
				Value: []float64{1.0},
			},
			&cli.FloatSliceFlag{
				Name:  "reward-risk",
				Usage: "Profit target as a multiple of the stop distance (repeatable)",
				Value: []float64{2.0},
			},
			&cli.FloatFlag{
				Name:  "point-value",
				Usage: "Dollar value of one point of price movement",
				Value: 20.0,
			},
			&cli.FloatFlag{
				Name:  "friction",
				Usage: "Round-trip commission plus slippage plus spread in USD",
				Value: 5.0,
			},
			&cli.StringFlag{
				Name:  "cost-model",
				Usage: "Cost model (flat_friction, zero_friction)",
				Value: "flat_friction",
			},
			&cli.StringFlag{
				Name:  "risk-basis",
				Usage: "Risk basis (structural, entry_anchored)",
				Value: "structural",
			},
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "Worker count for the configuration sweep (0 = sequential)",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Monte Carlo resampling seed",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Only evaluate ranges closing on or after this date (`YYYY-MM-DD`)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "Only evaluate ranges closing on or before this date (`YYYY-MM-DD`)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
		},
		Action: backtestAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the engine configuration",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
