// =============================================================================
// Invoice Price Comparison - Reconcile Command
// =============================================================================
//
// This file defines the 'reconcile' command, the second pipeline stage.
//
// COMMAND USAGE:
//   pricecmp reconcile
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-price-comparison/internal/reconcile"
)

// reconcileCmd represents the 'reconcile' command.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compute the cheapest observed unit price per item",
	Long: `The reconcile command loads output/all_lines_combined.csv, maps item
descriptions to canonical names through the mapping table
(map_dictionary.csv by default), fills missing amounts and unit prices, and
writes the cheapest supplier per item to output/cheapest_by_item.csv.

The comparison price is amount / qty. Rows without a usable amount or
quantity are left out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command) error {
	env, err := newStageEnv("reconcile")
	if err != nil {
		return err
	}
	defer env.finish()

	reconciler := reconcile.New(env.cfg, reconcile.Options{
		Logger:      env.logger,
		Metrics:     env.metrics,
		RunID:       env.runID,
		Out:         cmd.OutOrStdout(),
		CommandName: rootCmd.Name(),
	})

	if _, err := reconciler.Run(cmd.Context()); err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	return nil
}
