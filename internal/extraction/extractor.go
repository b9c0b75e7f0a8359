// =============================================================================
// Invoice Price Comparison - Extraction Stage
// =============================================================================
//
// This module orchestrates the extraction stage for a whole input directory.
//
// EXTRACTION PIPELINE:
//   1. Discover invoice documents in the input directory
//   2. For each document, in name order:
//      a. Read the file fully into memory
//      b. Call the document-understanding service
//      c. Map the service's fields onto line-item records
//      d. Write lines_<stem>.csv
//   3. Write all_lines_combined.csv with a source_file column
//   4. Write an error log for documents that failed
//
// FAILURE POLICY:
//   With continue_on_error (the default) a document whose read or service
//   call fails is logged, counted and skipped; it gets no lines file. Without
//   it, the first such failure aborts the stage. Failures to write artifacts
//   always abort.
//
// =============================================================================

package extraction

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-price-comparison/internal/config"
	"github.com/ginjaninja78/invoice-price-comparison/internal/csvwriter"
	"github.com/ginjaninja78/invoice-price-comparison/internal/metrics"
	"github.com/ginjaninja78/invoice-price-comparison/internal/types"
	"github.com/ginjaninja78/invoice-price-comparison/pkg/utils"
)

// Operations a DocumentError can report.
const (
	OpRead        = "read"
	OpServiceCall = "service_call"
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// DocumentError is a failure confined to one input document.
type DocumentError struct {
	// File is the document's base name.
	File string

	// Op is the step that failed: OpRead or OpServiceCall.
	Op string

	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.File, e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Summary describes one extraction run.
type Summary struct {
	RunID string

	// NoInput is set when the input directory held no documents. Nothing
	// else was done.
	NoInput bool

	Documents int
	Succeeded int
	Failed    int
	Rows      int

	// CombinedPath is empty when no document produced any rows.
	CombinedPath string

	// ErrorLogPath is empty when every document succeeded.
	ErrorLogPath string

	Errors   []*DocumentError
	Duration time.Duration
}

// =============================================================================
// EXTRACTOR STRUCTURE
// =============================================================================

// AnalyzerFactory builds the DocumentAnalyzer once there is something to
// analyze.
type AnalyzerFactory func(ctx context.Context) (DocumentAnalyzer, error)

// Options carries the collaborators of an Extractor. Zero values fall back
// to defaults.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Recorder

	// NewAnalyzer is called after discovery when New was given a nil
	// analyzer, so an empty input directory never needs service credentials.
	NewAnalyzer AnalyzerFactory

	// RunID tags the error log. Default: a random UUID.
	RunID string

	// Out receives the user-facing outcome lines. Default: os.Stdout.
	Out io.Writer

	// ProgressOut receives the progress bar when enabled. Default: os.Stderr.
	ProgressOut io.Writer
}

// Extractor runs the extraction stage.
type Extractor struct {
	cfg      *config.Config
	files    *utils.FileManager
	analyzer DocumentAnalyzer
	factory  AnalyzerFactory

	logger      *zap.Logger
	metrics     *metrics.Recorder
	runID       string
	out         io.Writer
	progressOut io.Writer
}

// New creates an Extractor.
func New(cfg *config.Config, analyzer DocumentAnalyzer, opts Options) *Extractor {
	e := &Extractor{
		cfg:         cfg,
		files:       utils.NewFileManager(cfg.InputDir, cfg.OutputDir),
		analyzer:    analyzer,
		factory:     opts.NewAnalyzer,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		runID:       opts.RunID,
		out:         opts.Out,
		progressOut: opts.ProgressOut,
	}

	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.metrics == nil {
		e.metrics = metrics.NewRecorder()
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.progressOut == nil {
		e.progressOut = os.Stderr
	}

	return e
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run extracts every document in the input directory.
func (e *Extractor) Run(ctx context.Context) (*Summary, error) {
	startTime := time.Now()
	summary := &Summary{RunID: e.runID}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	if err := e.files.EnsureOutputDir(); err != nil {
		return nil, err
	}

	documents, err := e.files.DiscoverDocuments(utils.DocumentExtensions)
	if err != nil {
		return nil, err
	}

	if len(documents) == 0 {
		fmt.Fprintf(e.out, "Put invoice images/PDFs into %s/ then run again.\n", e.cfg.InputDir)
		summary.NoInput = true
		return summary, nil
	}

	if e.analyzer == nil {
		if e.factory == nil {
			return nil, fmt.Errorf("no document analyzer configured")
		}
		analyzer, err := e.factory(ctx)
		if err != nil {
			return nil, err
		}
		e.analyzer = analyzer
	}

	summary.Documents = len(documents)
	e.logger.Info("extraction started",
		zap.Int("documents", len(documents)),
		zap.String("input_dir", e.cfg.InputDir),
		zap.Int("candidates_version", CandidatesVersion),
	)

	// =========================================================================
	// STEP 2: PROCESS EACH DOCUMENT
	// =========================================================================

	bar := e.newProgressBar(len(documents))
	var combined []types.LineItemRecord
	linesFrom := make(map[string]string, len(documents))

	for _, path := range documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		linesPath := e.files.LinesPath(path)
		if previous, ok := linesFrom[linesPath]; ok {
			e.logger.Warn("documents share a stem, lines file will be overwritten",
				zap.String("file", filepath.Base(path)),
				zap.String("previous", previous),
				zap.String("lines_file", linesPath),
			)
		}
		linesFrom[linesPath] = filepath.Base(path)

		rows, docErr := e.extractDocument(ctx, path)
		_ = bar.Add(1)

		if docErr != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, docErr)
			e.metrics.DocumentsTotal.WithLabelValues(metrics.StatusFailed).Inc()
			e.logger.Error("document failed",
				zap.String("file", docErr.File),
				zap.String("op", docErr.Op),
				zap.Error(docErr.Err),
			)

			if !e.cfg.ContinueOnError {
				summary.Duration = time.Since(startTime)
				return summary, docErr
			}
			continue
		}

		if err := csvwriter.WriteLines(linesPath, rows, false); err != nil {
			return nil, err
		}

		summary.Succeeded++
		e.metrics.DocumentsTotal.WithLabelValues(metrics.StatusOK).Inc()
		e.metrics.LineItemsExtracted.Add(float64(len(rows)))
		e.logger.Debug("document extracted",
			zap.String("file", filepath.Base(path)),
			zap.Int("rows", len(rows)),
			zap.String("lines_file", linesPath),
		)

		source := filepath.Base(path)
		for _, row := range rows {
			row.SourceFile = source
			combined = append(combined, row)
		}
	}

	// =========================================================================
	// STEP 3: WRITE COMBINED FILE
	// =========================================================================

	summary.Rows = len(combined)
	if len(combined) > 0 {
		combinedPath := e.files.CombinedPath()
		if err := csvwriter.WriteLines(combinedPath, combined, true); err != nil {
			return nil, err
		}
		summary.CombinedPath = combinedPath
		fmt.Fprintf(e.out, "Wrote: %s\n", combinedPath)
	} else {
		combinedPath := e.files.CombinedPath()
		if utils.FileExists(combinedPath) {
			e.logger.Warn("no line items extracted, combined file from an earlier run left in place",
				zap.String("combined_file", combinedPath),
			)
		} else {
			e.logger.Warn("no line items extracted, combined file not written",
				zap.String("combined_file", combinedPath),
			)
		}
	}

	// =========================================================================
	// STEP 4: WRITE ERROR LOG
	// =========================================================================

	if len(summary.Errors) > 0 {
		entries := make([]utils.ErrorLogEntry, 0, len(summary.Errors))
		for _, docErr := range summary.Errors {
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     docErr.File,
				ErrorType:    docErr.Op,
				ErrorMessage: docErr.Err.Error(),
			})
		}

		logPath, err := utils.WriteErrorLog(entries, e.cfg.OutputDir, e.runID)
		if err != nil {
			e.logger.Warn("failed to write error log", zap.Error(err))
		} else {
			summary.ErrorLogPath = logPath
		}
	}

	summary.Duration = time.Since(startTime)
	e.logger.Info("extraction finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("rows", summary.Rows),
		zap.Duration("elapsed", summary.Duration),
	)

	return summary, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// extractDocument reads one document and maps the service response to rows.
func (e *Extractor) extractDocument(ctx context.Context, path string) ([]types.LineItemRecord, *DocumentError) {
	name := filepath.Base(path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentError{File: name, Op: OpRead, Err: err}
	}

	callStart := time.Now()
	docs, err := e.analyzer.Analyze(ctx, content)
	e.metrics.ObserveServiceCall(callStart)
	if err != nil {
		return nil, &DocumentError{File: name, Op: OpServiceCall, Err: err}
	}

	if len(docs) == 0 {
		e.logger.Debug("service returned no expense documents", zap.String("file", name))
	}

	return RowsFromDocuments(docs), nil
}

func (e *Extractor) newProgressBar(total int) *progressbar.ProgressBar {
	if !e.cfg.Progress {
		return progressbar.DefaultSilent(int64(total))
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(e.progressOut),
		progressbar.OptionSetDescription("Extracting invoices"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(e.progressOut)
		}),
	)
}
