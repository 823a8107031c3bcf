// retiresim estimates the probability that a retirement portfolio survives
// to a target age, given market assumptions and a take-home schedule tied
// to Social Security timing.
package main

import (
	"fmt"
	"os"

	"github.com/retiresim/portfolio-calculator/internal/calculation"
	"github.com/retiresim/portfolio-calculator/internal/config"
	"github.com/retiresim/portfolio-calculator/internal/domain"
	"github.com/retiresim/portfolio-calculator/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagConfig     string
	flagFormat     string
	flagWrite      bool
	flagSeed       int64
	flagTrials     int
	flagLogLevel   string
	flagLogFormat  string
	flagTargetRate float64
	flagOutFile    string
)

// initializeLogger creates a zap logger from the scenario's logging block
// with CLI overrides taking precedence.
func initializeLogger(loggingConfig config.LoggingConfig, levelOverride, formatOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if levelOverride != "" {
		level = levelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if formatOverride != "" {
		format = formatOverride
	}
	if format == "" {
		format = "console"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	return cfg.Build()
}

// loadScenario reads the scenario file and builds the simulator with CLI
// overrides applied.
func loadScenario(path string) (*calculation.PortfolioSimulator, domain.SimulationParameters, config.LoggingConfig, error) {
	parser := config.NewInputParser()
	scenario, err := parser.LoadFromFile(path)
	if err != nil {
		return nil, domain.SimulationParameters{}, config.LoggingConfig{}, err
	}

	rules, err := scenario.TaxRules()
	if err != nil {
		return nil, domain.SimulationParameters{}, config.LoggingConfig{}, err
	}
	taxCalc, err := calculation.NewTaxCalculator(rules)
	if err != nil {
		return nil, domain.SimulationParameters{}, config.LoggingConfig{}, err
	}

	seed := scenario.Simulation.Seed
	if flagSeed != 0 {
		seed = flagSeed
	}
	sim := calculation.NewPortfolioSimulator(taxCalc, seed)
	if scenario.Simulation.MaxWorkers > 0 {
		sim.MaxWorkers = scenario.Simulation.MaxWorkers
	}

	params := scenario.Parameters.ToDomain().ApplyDefaults()
	if flagTrials > 0 {
		params.TrialCount = flagTrials
	}
	return sim, params, scenario.Logging, nil
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the Monte Carlo sustainability simulation for a scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, params, loggingCfg, err := loadScenario(flagConfig)
			if err != nil {
				return err
			}

			logger, err := initializeLogger(loggingCfg, flagLogLevel, flagLogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			sim.Logger = logger.Sugar()

			result, err := sim.RunSimulation(params)
			if err != nil {
				return err
			}

			formatter := output.GetFormatterByName(flagFormat)
			if formatter == nil {
				return fmt.Errorf("unknown output format %q (console, csv, json)", flagFormat)
			}

			if flagWrite {
				filename, err := output.WriteFormatted(formatter, result, output.Extension(flagFormat))
				if err != nil {
					return err
				}
				logger.Sugar().Infof("report written to %s", filename)
				return nil
			}

			data, err := formatter.Format(result)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "scenario.yaml", "scenario file to simulate")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "console", "output format: console, csv, json")
	cmd.Flags().BoolVar(&flagWrite, "write", false, "write a timestamped report file instead of stdout")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "override the root random seed")
	cmd.Flags().IntVar(&flagTrials, "trials", 0, "override the trial count")
	return cmd
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the maximum monthly take-home that meets a target success rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, params, loggingCfg, err := loadScenario(flagConfig)
			if err != nil {
				return err
			}

			logger, err := initializeLogger(loggingCfg, flagLogLevel, flagLogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			sim.Logger = logger.Sugar()

			solution, err := sim.SolveSustainableTakehome(params, calculation.TakehomeSolverConfig{
				TargetSuccessRate: decimal.NewFromFloat(flagTargetRate),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Maximum Monthly Take-Home: %s\n",
				output.FormatCurrency(solution.MonthlyTakehome))
			fmt.Fprintf(cmd.OutOrStdout(), "Achieved Success Rate: %s\n",
				output.FormatPercent(solution.AchievedSuccessRate))
			fmt.Fprintf(cmd.OutOrStdout(), "Required Annual Withdrawal (Pre-SS):  %s\n",
				output.FormatCurrency(solution.Result.RequiredWithdrawalPreSS))
			fmt.Fprintf(cmd.OutOrStdout(), "Required Annual Withdrawal (Post-SS): %s\n",
				output.FormatCurrency(solution.Result.RequiredWithdrawalPostSS))
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "scenario.yaml", "scenario file to solve against")
	cmd.Flags().Float64Var(&flagTargetRate, "target-rate", 0.80, "desired success rate as a fraction")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "override the root random seed")
	return cmd
}

func newExampleConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "example-config",
		Short: "Write an example scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()
			if err := parser.WriteExampleConfiguration(flagOutFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example scenario written to %s\n", flagOutFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagOutFile, "out", "o", "scenario.yaml", "destination file")
	return cmd
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "retiresim",
		Short:         "Retirement portfolio sustainability calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console, json")
	root.AddCommand(newSimulateCmd(), newSolveCmd(), newExampleConfigCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
