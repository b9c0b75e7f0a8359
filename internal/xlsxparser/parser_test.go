package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse_FirstSheet(t *testing.T) {
	path := writeWorkbook(t, "mapping", [][]interface{}{
		{"raw_name", " normalized_name ", "unit_hint"},
		{"Wdgt", "Widget"},
		{"", "", ""},
		{" Gdgt ", "Gadget", "pcs"},
	})

	sheet, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "mapping", sheet.Name)
	assert.Equal(t, []string{"raw_name", "normalized_name", "unit_hint"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Widget", sheet.Rows[0]["normalized_name"])
	assert.Equal(t, "", sheet.Rows[0]["unit_hint"])
	assert.Equal(t, "Gdgt", sheet.Rows[1]["raw_name"])
}

func TestParse_HeaderOnly(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{{"raw_name", "normalized_name"}})

	sheet, err := Parse(path)
	require.NoError(t, err)
	assert.Empty(t, sheet.Rows)
}

func TestParseWithOptions_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{{"a"}})

	_, err := ParseWithOptions(path, Options{SheetName: "missing"})
	require.Error(t, err)
}

func TestParse_NotAWorkbook(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
}
