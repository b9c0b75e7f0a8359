// =============================================================================
// Invoice Price Comparison - CSV Parser Module
// =============================================================================
//
// This module reads the tabular inputs of the reconciliation stage: the
// combined line file written by the extraction stage and the user-maintained
// mapping table. Both are read as header-keyed rows; typing happens later.
//
// FEATURES:
//   - Lazy quotes and ragged rows (spreadsheet exports are rarely strict)
//   - Blank rows skipped
//   - Legacy encodings decoded via golang.org/x/text (mapping tables edited in
//     Excel on Japanese Windows are commonly Shift_JIS)
//   - UTF-8 byte order marks stripped
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// SETTINGS AND DATA
// =============================================================================

// Settings controls how a CSV file is read.
type Settings struct {
	// Delimiter separates fields. Default: ","
	Delimiter rune

	// Encoding is the character encoding of the file.
	// Valid values: "UTF-8" (default), "Shift_JIS", "EUC-JP", "Windows-1252"
	Encoding string
}

// DefaultSettings returns comma-separated UTF-8.
func DefaultSettings() Settings {
	return Settings{Delimiter: ',', Encoding: "UTF-8"}
}

// CSVData represents a parsed CSV file.
type CSVData struct {
	// Headers contains the cleaned column headers, in file order.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// SourceFile is the path the data was read from.
	SourceFile string
}

// HasColumn reports whether the header row contains name.
func (d *CSVData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns its header-keyed rows.
func Parse(filePath string, settings Settings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader reads CSV from r. An input with no rows at all yields empty
// data rather than an error; a file that only has a header is equally empty.
func ParseReader(r io.Reader, settings Settings) (*CSVData, error) {
	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(transform.NewReader(bufio.NewReader(r), decoder))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return &CSVData{Rows: []map[string]string{}}, nil
	}

	headers := cleanHeaders(allRows[0])
	return &CSVData{
		Headers: headers,
		Rows:    extractDataRows(allRows[1:], headers),
	}, nil
}

// configureReader applies the settings to the CSV reader.
func configureReader(reader *csv.Reader, settings Settings) {
	reader.Comma = ','
	if settings.Delimiter != 0 {
		reader.Comma = settings.Delimiter
	}

	// Allow a variable number of fields per row.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// decoderFor maps an encoding name onto an x/text decoder. UTF-8 input has a
// leading byte order mark removed.
func decoderFor(name string) (transform.Transformer, error) {
	var enc encoding.Encoding

	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_")) {
	case "", "UTF_8", "UTF8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "SHIFT_JIS", "SJIS", "CP932", "WINDOWS_31J":
		enc = japanese.ShiftJIS
	case "EUC_JP", "EUCJP":
		enc = japanese.EUCJP
	case "WINDOWS_1252", "CP1252":
		enc = charmap.Windows1252
	case "ISO_8859_1", "LATIN1":
		enc = charmap.ISO8859_1
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}

	return enc.NewDecoder(), nil
}

// cleanHeaders trims headers and names empty ones by position.
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

// extractDataRows converts rows into header-keyed maps. Cells beyond the
// header are dropped; missing cells are empty.
func extractDataRows(rows [][]string, headers []string) []map[string]string {
	dataRows := make([]map[string]string, 0, len(rows))

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		rowMap := make(map[string]string, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(row) {
				rowMap[header] = strings.TrimSpace(row[colIndex])
			} else {
				rowMap[header] = ""
			}
		}

		dataRows = append(dataRows, rowMap)
	}

	return dataRows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
