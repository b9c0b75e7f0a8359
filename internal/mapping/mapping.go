// =============================================================================
// Invoice Price Comparison - Name Mapping Module
// =============================================================================
//
// This module maps free-text item descriptions onto canonical catalog names
// using the user-maintained mapping table (map_dictionary.csv or .xlsx).
//
// MATCHING RULES:
//   - The description is whitespace-trimmed, then compared to raw_name with
//     exact string equality. No case folding, no fuzzy matching.
//   - A description with no entry is its own canonical name.
//   - A missing or empty table is pure identity normalization.
//
// =============================================================================

package mapping

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-price-comparison/internal/csvparser"
	"github.com/ginjaninja78/invoice-price-comparison/internal/types"
	"github.com/ginjaninja78/invoice-price-comparison/internal/xlsxparser"
)

// =============================================================================
// TABLE
// =============================================================================

// Table is a lookup from trimmed raw name to mapping entry. The zero value
// and nil are valid empty tables.
type Table struct {
	entries map[string]types.MappingEntry
	skipped int
}

// NewTable builds a table from entries. The first entry for a raw name wins;
// entries with a blank raw or normalized name are skipped and counted.
func NewTable(entries []types.MappingEntry) *Table {
	t := &Table{entries: make(map[string]types.MappingEntry, len(entries))}

	for _, entry := range entries {
		entry.RawName = strings.TrimSpace(entry.RawName)
		entry.NormalizedName = strings.TrimSpace(entry.NormalizedName)

		if entry.RawName == "" || entry.NormalizedName == "" {
			t.skipped++
			continue
		}
		if _, exists := t.entries[entry.RawName]; exists {
			t.skipped++
			continue
		}
		t.entries[entry.RawName] = entry
	}

	return t
}

// Len returns the number of usable entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Skipped returns how many input entries were blank or duplicates.
func (t *Table) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}

// Normalize returns the canonical name for desc.
func (t *Table) Normalize(desc string) string {
	key := strings.TrimSpace(desc)
	if t == nil {
		return key
	}
	if entry, ok := t.entries[key]; ok {
		return entry.NormalizedName
	}
	return key
}

// Lookup returns the full entry for desc, including its unit and pack-size
// hints.
func (t *Table) Lookup(desc string) (types.MappingEntry, bool) {
	if t == nil {
		return types.MappingEntry{}, false
	}
	entry, ok := t.entries[strings.TrimSpace(desc)]
	return entry, ok
}

// =============================================================================
// LOADING
// =============================================================================

// LoadOptions describes how a mapping file is read.
type LoadOptions struct {
	// Encoding applies to CSV tables.
	Encoding string

	// Sheet applies to workbooks. Default: the first sheet.
	Sheet string
}

// Load reads a mapping table from path. A missing file yields an empty table
// and no error. The format follows the extension: .xlsx and .xlsm are read
// as workbooks, everything else as CSV.
func Load(path string, opts LoadOptions, logger *zap.Logger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path == "" {
		return NewTable(nil), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("mapping table not found, using identity normalization", zap.String("path", path))
		return NewTable(nil), nil
	}

	rows, headers, err := readRows(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping table %s: %w", path, err)
	}
	if len(rows) > 0 && !hasColumns(headers, types.ColRawName, types.ColNormalizedName) {
		return nil, fmt.Errorf("mapping table %s must have %q and %q columns",
			path, types.ColRawName, types.ColNormalizedName)
	}

	entries := make([]types.MappingEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, types.MappingEntry{
			RawName:        row[types.ColRawName],
			NormalizedName: row[types.ColNormalizedName],
			UnitHint:       row[types.ColUnitHint],
			PackSizeHint:   row[types.ColPackSizeHint],
		})
	}

	table := NewTable(entries)
	if table.Skipped() > 0 {
		logger.Warn("mapping table has blank or duplicate entries",
			zap.String("path", path),
			zap.Int("skipped", table.Skipped()),
		)
	}
	logger.Debug("mapping table loaded", zap.String("path", path), zap.Int("entries", table.Len()))

	return table, nil
}

func readRows(path string, opts LoadOptions) ([]map[string]string, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		sheet, err := xlsxparser.ParseWithOptions(path, xlsxparser.Options{SheetName: opts.Sheet})
		if err != nil {
			return nil, nil, err
		}
		return sheet.Rows, sheet.Headers, nil
	default:
		data, err := csvparser.Parse(path, csvparser.Settings{Encoding: opts.Encoding})
		if err != nil {
			return nil, nil, err
		}
		return data.Rows, data.Headers, nil
	}
}

func hasColumns(headers []string, names ...string) bool {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, name := range names {
		if !present[name] {
			return false
		}
	}
	return true
}
