// =============================================================================
// Invoice Price Comparison - Artifact Writer Module
// =============================================================================
//
// This module renders the pipeline's tabular artifacts. Every artifact is
// generated in memory first and written to disk in one step, so a failed
// render never leaves a half-written file behind.
//
// ARTIFACTS:
//   lines_<stem>.csv          supplier,invoice_date,raw_desc,qty,unit,unit_price,amount,tax_rate
//   all_lines_combined.csv    the same columns followed by source_file
//   cheapest_by_item.csv      normalized_name,cheapest_supplier,cheapest_unit_price
//   cheapest_by_item.xlsx     optional spreadsheet copy of the above
//
// NUMBER FORMAT:
//   Floats are written in their shortest round-trip form with ".0" appended
//   to integral values, so 100 is written as "100.0" and 0.1 as "0.1".
//   Very small or very large values switch to exponent notation (1e-05).
//
// =============================================================================

package csvwriter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoice-price-comparison/internal/types"
)

// CheapestSheet is the worksheet name of the spreadsheet report.
const CheapestSheet = "cheapest_by_item"

// =============================================================================
// CSV GENERATION
// =============================================================================

// Generate renders a header row and records as CSV.
func Generate(header []string, records [][]string) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buffer.Bytes(), nil
}

// WriteLines writes line items to path. withSource selects the combined
// layout with the trailing source_file column. A header row is written even
// when rows is empty.
func WriteLines(path string, rows []types.LineItemRecord, withSource bool) error {
	header := types.LineColumns
	if withSource {
		header = types.CombinedColumns
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Values(withSource)
	}

	return writeCSV(path, header, records)
}

// WriteCheapest writes one row per cheapest record to path.
func WriteCheapest(path string, records []types.CheapestRecord) error {
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			record.NormalizedName,
			record.CheapestSupplier,
			FormatFloat(record.CheapestUnitPrice),
		}
	}

	return writeCSV(path, types.CheapestColumns, rows)
}

func writeCSV(path string, header []string, records [][]string) error {
	content, err := Generate(header, records)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// =============================================================================
// SPREADSHEET REPORT
// =============================================================================

// WriteCheapestXLSX writes the cheapest records to a single-sheet workbook.
// Prices are stored as numbers so they can be sorted and summed in Excel.
func WriteCheapestXLSX(path string, records []types.CheapestRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CheapestSheet); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := make([]interface{}, len(types.CheapestColumns))
	for i, column := range types.CheapestColumns {
		header[i] = column
	}
	if err := f.SetSheetRow(CheapestSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(CheapestSheet, "A1", "C1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{record.NormalizedName, record.CheapestSupplier, record.CheapestUnitPrice}
		if err := f.SetSheetRow(CheapestSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(CheapestSheet, "A", "B", 28); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatFloat renders f in its shortest round-trip form. Decimal exponents
// from -4 to 15 print positionally with a decimal point kept on integral
// values (100.0); anything outside that range uses exponent notation
// (1e-05, 1.5e+16).
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	if f != 0 {
		sci := strconv.FormatFloat(f, 'e', -1, 64)
		exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
		if err == nil && (exp < -4 || exp >= 16) {
			return sci
		}
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
