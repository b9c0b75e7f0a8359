// =============================================================================
// Invoice Price Comparison - XLSX Parser Module
// =============================================================================
//
// This module reads a worksheet into header-keyed rows, the same shape the
// CSV parser produces. It lets the mapping table be maintained directly in
// Excel instead of being exported to CSV first.
//
// LAYOUT:
//   Row 1 (by default) holds column names such as raw_name, normalized_name.
//   Every following non-empty row is one record.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// OPTIONS AND DATA
// =============================================================================

// Options selects the worksheet to read. Row 1 holds the column headers.
type Options struct {
	// SheetName is the worksheet to read. Default: the first sheet.
	SheetName string
}

// Sheet is a parsed worksheet.
type Sheet struct {
	// Name is the worksheet the rows were read from.
	Name string

	// Headers contains the trimmed column headers, in sheet order.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// SourceFile is the workbook path.
	SourceFile string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the first worksheet of the workbook at path.
func Parse(path string) (*Sheet, error) {
	return ParseWithOptions(path, Options{})
}

// ParseWithOptions reads a worksheet using the given options.
func ParseWithOptions(path string, options Options) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := options.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", sheetName, err)
	}

	sheet := &Sheet{
		Name:       sheetName,
		Rows:       []map[string]string{},
		SourceFile: path,
	}

	if len(rows) == 0 {
		return sheet, nil
	}

	sheet.Headers = cleanHeaders(rows[0])

	for i := 1; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		sheet.Rows = append(sheet.Rows, parseRow(row, sheet.Headers))
	}

	return sheet, nil
}

// parseRow keys a row by the headers. GetRows trims trailing empty cells, so
// short rows are common and padded with empty values.
func parseRow(row []string, headers []string) map[string]string {
	record := make(map[string]string, len(headers))

	for index, header := range headers {
		if index < len(row) {
			record[header] = strings.TrimSpace(row[index])
		} else {
			record[header] = ""
		}
	}

	return record
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
