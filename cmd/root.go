// =============================================================================
// Invoice Price Comparison - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The stage commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (pricecmp)
//   ├── extractCmd   (pricecmp extract)
//   ├── reconcileCmd (pricecmp reconcile)
//   └── versionCmd   (pricecmp version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration once per invocation
//   3. Setting up logging and metrics for the stage
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-price-comparison/internal/config"
	"github.com/ginjaninja78/invoice-price-comparison/internal/logging"
	"github.com/ginjaninja78/invoice-price-comparison/internal/metrics"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pricecmp",
	Short: "Invoice price comparison - find the cheapest supplier per item",
	Long: `pricecmp reads scanned invoices, extracts their line items and reports
the lowest observed unit price for every item across all suppliers.

It runs as two independent stages connected by CSV files:

  extract     input/*.pdf|jpg|jpeg|png -> output/lines_*.csv,
                                          output/all_lines_combined.csv
  reconcile   output/all_lines_combined.csv + map_dictionary.csv
                                       -> output/cheapest_by_item.csv

Example Usage:
  pricecmp extract                     # Extract line items from input/
  pricecmp reconcile                   # Compute cheapest price per item
  pricecmp extract --config ./my.yaml  # Use a custom configuration file`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: the YAML configuration file. A missing file is fine.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (default is config.yaml)",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// STAGE ENVIRONMENT
// =============================================================================

// stageEnv is what every stage command needs, built once per invocation.
type stageEnv struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Recorder
	runID   string
}

// newStageEnv loads the configuration and builds the logger for stage.
func newStageEnv(stage string) (*stageEnv, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID), zap.String("stage", stage))
	logger.Debug("configuration loaded",
		zap.String("config_file", cfgFile),
		zap.String("input_dir", cfg.InputDir),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("mapping_file", cfg.MappingFile),
		zap.Float64("default_tax_rate", cfg.DefaultTaxRate),
		zap.String("aws_region", cfg.AWS.Region),
	)

	return &stageEnv{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewRecorder(),
		runID:   runID,
	}, nil
}

// finish writes the metrics snapshot and flushes the logger.
func (e *stageEnv) finish() {
	if err := e.metrics.WriteTextfile(e.cfg.MetricsFile); err != nil {
		e.logger.Warn("failed to write metrics", zap.Error(err))
	}
	_ = e.logger.Sync()
}
