// =============================================================================
// Invoice Price Comparison - Extract Command
// =============================================================================
//
// This file defines the 'extract' command, the first pipeline stage.
//
// COMMAND USAGE:
//   pricecmp extract
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover documents in the input directory
//   3. Build the Textract client once there is something to extract
//   4. Extract every document and report failed ones
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-price-comparison/internal/extraction"
)

// extractCmd represents the 'extract' command.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract invoice line items into CSV files",
	Long: `The extract command sends every invoice image or PDF in the input directory
to AWS Textract AnalyzeExpense and writes the detected line items:

  output/lines_<name>.csv         one file per document
  output/all_lines_combined.csv   all documents, with a source_file column

A document whose service call fails is logged to
output/extraction_errors_<timestamp>.txt and skipped, unless
continue_on_error is false in the configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

// runExtract wires configuration, the Textract client and the extractor.
func runExtract(cmd *cobra.Command) error {
	env, err := newStageEnv("extract")
	if err != nil {
		return err
	}
	defer env.finish()

	extractor := extraction.New(env.cfg, nil, extraction.Options{
		Logger:      env.logger,
		Metrics:     env.metrics,
		RunID:       env.runID,
		Out:         cmd.OutOrStdout(),
		ProgressOut: cmd.ErrOrStderr(),
		NewAnalyzer: func(ctx context.Context) (extraction.DocumentAnalyzer, error) {
			analyzer, err := extraction.NewTextractAnalyzer(ctx, env.cfg.AWS, env.logger)
			if err != nil {
				return nil, err
			}
			return analyzer, nil
		},
	})

	summary, err := extractor.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if summary.Failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d document(s) failed; see %s\n",
			summary.Failed, summary.Documents, summary.ErrorLogPath)
	}

	return nil
}
