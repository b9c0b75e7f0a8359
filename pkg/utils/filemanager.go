// =============================================================================
// Invoice Price Comparison - File Manager Utility
// =============================================================================
//
// This module owns the pipeline's on-disk layout:
//   - Input document discovery
//   - Artifact naming in the output directory
//   - Directory management
//   - Per-document error logs
//
// LAYOUT:
//   input/                      invoice images and PDFs (not recursed)
//   output/lines_<stem>.csv     one per document
//   output/all_lines_combined.csv
//   output/cheapest_by_item.csv
//   output/extraction_errors_<timestamp>.txt
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Artifact file names.
const (
	CombinedFileName    = "all_lines_combined.csv"
	CheapestFileName    = "cheapest_by_item.csv"
	CheapestXLSXName    = "cheapest_by_item.xlsx"
	linesFilePrefix     = "lines_"
	errorLogFilePrefix  = "extraction_errors_"
	errorLogTimeFormat  = "20060102_150405"
	errorLogStampFormat = "2006-01-02 15:04:05"
)

// DocumentExtensions are the invoice formats the extraction stage accepts.
var DocumentExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager resolves input and output paths for both stages.
type FileManager struct {
	// InputDir is the directory where invoice documents are placed.
	InputDir string

	// OutputDir is the directory where every artifact is written.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureOutputDir creates the output directory if it does not exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverDocuments lists the files directly inside the input directory whose
// extension matches one of exts, ignoring case. The result is sorted by file
// name. A missing input directory yields no files and no error.
//
// When exts is empty, DocumentExtensions is used.
func (fm *FileManager) DiscoverDocuments(exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DocumentExtensions
	}

	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		wanted[strings.ToLower(ext)] = true
	}

	entries, err := os.ReadDir(fm.InputDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// LinesPath returns the per-document line file for the document at docPath:
// lines_<stem>.csv, where stem is the base name without its extension.
func (fm *FileManager) LinesPath(docPath string) string {
	base := filepath.Base(docPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(fm.OutputDir, linesFilePrefix+stem+".csv")
}

// CombinedPath returns the combined line file.
func (fm *FileManager) CombinedPath() string {
	return filepath.Join(fm.OutputDir, CombinedFileName)
}

// CheapestPath returns the cheapest-by-item CSV.
func (fm *FileManager) CheapestPath() string {
	return filepath.Join(fm.OutputDir, CheapestFileName)
}

// CheapestXLSXPath returns the optional cheapest-by-item workbook.
func (fm *FileManager) CheapestXLSXPath() string {
	return filepath.Join(fm.OutputDir, CheapestXLSXName)
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single failed document.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
}

// WriteErrorLog writes error entries to a timestamped log file in outputDir.
// runID ties the log to the structured log lines of the same run.
//
// RETURNS:
//   - The path to the error log file, or "" when there was nothing to write.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir, runID string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := time.Now()
	logPath := filepath.Join(outputDir, errorLogFilePrefix+now.Format(errorLogTimeFormat)+".txt")

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	// Write header.
	fmt.Fprintf(writer, "Invoice Extraction - Error Log\n"+
		"Generated: %s\n"+
		"Run ID: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format(errorLogStampFormat),
		runID,
		len(entries))

	// Write each entry.
	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n\n",
			i+1,
			entry.Timestamp.Format(errorLogStampFormat),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)
	}

	// Write footer.
	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a regular file or directory exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
