// =============================================================================
// Invoice Price Comparison - Reconciliation Stage
// =============================================================================
//
// This module turns the combined line file into one cheapest record per
// canonical item.
//
// RECONCILIATION PIPELINE:
//   1. Load all_lines_combined.csv
//   2. Load the mapping table (a missing or broken table means identity)
//   3. Normalize names and coerce numbers, row by row
//   4. Select the cheapest row per normalized name
//   5. Write cheapest_by_item.csv (and optionally .xlsx)
//
// Rows are never rejected with an error: unparsable fields become absent and
// rows without a name or effective price are only left out of selection.
//
// =============================================================================

package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-price-comparison/internal/config"
	"github.com/ginjaninja78/invoice-price-comparison/internal/csvparser"
	"github.com/ginjaninja78/invoice-price-comparison/internal/csvwriter"
	"github.com/ginjaninja78/invoice-price-comparison/internal/mapping"
	"github.com/ginjaninja78/invoice-price-comparison/internal/metrics"
	"github.com/ginjaninja78/invoice-price-comparison/internal/types"
	"github.com/ginjaninja78/invoice-price-comparison/pkg/utils"
)

// DefaultCommandName names the binary in the missing-input hint.
const DefaultCommandName = "pricecmp"

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Summary describes one reconciliation run.
type Summary struct {
	RunID string

	// NoInput is set when the combined line file did not exist.
	NoInput bool

	Rows           int
	Excluded       map[string]int
	MappingEntries int
	Items          int

	CheapestPath string
	XLSXPath     string

	Duration time.Duration
}

// =============================================================================
// RECONCILER STRUCTURE
// =============================================================================

// Options carries the collaborators of a Reconciler. Zero values fall back
// to defaults.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Recorder
	RunID   string

	// Out receives the user-facing outcome lines. Default: os.Stdout.
	Out io.Writer

	// CommandName is used in the hint printed when there is no input.
	CommandName string
}

// Reconciler runs the reconciliation stage.
type Reconciler struct {
	cfg   *config.Config
	files *utils.FileManager

	logger      *zap.Logger
	metrics     *metrics.Recorder
	runID       string
	out         io.Writer
	commandName string
}

// New creates a Reconciler.
func New(cfg *config.Config, opts Options) *Reconciler {
	r := &Reconciler{
		cfg:         cfg,
		files:       utils.NewFileManager(cfg.InputDir, cfg.OutputDir),
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		runID:       opts.RunID,
		out:         opts.Out,
		commandName: opts.CommandName,
	}

	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.metrics == nil {
		r.metrics = metrics.NewRecorder()
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.commandName == "" {
		r.commandName = DefaultCommandName
	}

	return r
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run reconciles the combined line file.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	startTime := time.Now()
	summary := &Summary{RunID: r.runID, Excluded: map[string]int{}}

	// =========================================================================
	// STEP 1: LOAD COMBINED LINES
	// =========================================================================

	combinedPath := r.files.CombinedPath()
	if !utils.FileExists(combinedPath) {
		fmt.Fprintf(r.out, "Run \"%s extract\" first.\n", r.commandName)
		summary.NoInput = true
		return summary, nil
	}

	data, err := csvparser.Parse(combinedPath, csvparser.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to load combined lines: %w", err)
	}

	for _, column := range []string{types.ColSupplier, types.ColRawDesc, types.ColQty, types.ColAmount} {
		if len(data.Rows) > 0 && !data.HasColumn(column) {
			r.logger.Warn("combined lines file lacks a column, treating it as absent",
				zap.String("column", column),
				zap.String("path", combinedPath),
			)
		}
	}

	records := make([]types.LineItemRecord, len(data.Rows))
	for i, row := range data.Rows {
		records[i] = types.LineItemFromRow(row)
	}
	summary.Rows = len(records)
	r.metrics.RowsReconciled.Add(float64(len(records)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 2: LOAD MAPPING TABLE
	// =========================================================================

	table, err := mapping.Load(r.cfg.MappingFile, mapping.LoadOptions{
		Encoding: r.cfg.MappingEncoding,
		Sheet:    r.cfg.MappingSheet,
	}, r.logger)
	if err != nil {
		r.logger.Warn("mapping table unusable, falling back to identity normalization", zap.Error(err))
		table = nil
	}
	summary.MappingEntries = table.Len()

	// =========================================================================
	// STEP 3: NORMALIZE AND COERCE
	// =========================================================================

	items := CoerceAll(records, table, r.cfg.DefaultTaxRate)

	for i, item := range items {
		reason := exclusionReason(item)
		if reason == "" {
			continue
		}
		summary.Excluded[reason]++
		r.metrics.RowsExcluded.WithLabelValues(reason).Inc()

		fields := []zap.Field{
			zap.Int("index", i),
			zap.String("reason", reason),
			zap.String("raw_desc", item.RawDesc),
			zap.String("qty", item.LineItemRecord.Qty),
			zap.String("amount", item.LineItemRecord.Amount),
		}
		if entry, ok := table.Lookup(item.RawDesc); ok {
			fields = append(fields,
				zap.String("unit_hint", entry.UnitHint),
				zap.String("pack_size_hint", entry.PackSizeHint),
			)
		}
		r.logger.Debug("row left out of selection", fields...)
	}

	// =========================================================================
	// STEP 4: SELECT CHEAPEST
	// =========================================================================

	cheapest := SelectCheapest(items)
	summary.Items = len(cheapest)
	r.metrics.CheapestItems.Set(float64(len(cheapest)))

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	cheapestPath := r.files.CheapestPath()
	if err := csvwriter.WriteCheapest(cheapestPath, cheapest); err != nil {
		return nil, err
	}
	summary.CheapestPath = cheapestPath
	fmt.Fprintf(r.out, "Wrote: %s\n", cheapestPath)

	if r.cfg.XLSXReport {
		xlsxPath := r.files.CheapestXLSXPath()
		if err := csvwriter.WriteCheapestXLSX(xlsxPath, cheapest); err != nil {
			return nil, err
		}
		summary.XLSXPath = xlsxPath
		fmt.Fprintf(r.out, "Wrote: %s\n", xlsxPath)
	}

	summary.Duration = time.Since(startTime)
	r.logger.Info("reconciliation finished",
		zap.Int("rows", summary.Rows),
		zap.Int("items", summary.Items),
		zap.Int("mapping_entries", summary.MappingEntries),
		zap.Duration("elapsed", summary.Duration),
	)

	return summary, nil
}
