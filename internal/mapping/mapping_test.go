package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/japanese"

	"github.com/ginjaninja78/invoice-price-comparison/internal/types"
)

func TestNormalize_IdentityWithoutTable(t *testing.T) {
	var table *Table
	assert.Equal(t, "Widget", table.Normalize("  Widget "))
	assert.Equal(t, 0, table.Len())

	assert.Equal(t, "Widget", NewTable(nil).Normalize("Widget"))
}

func TestNormalize_ExactTrimmedMatch(t *testing.T) {
	table := NewTable([]types.MappingEntry{
		{RawName: " Wdgt ", NormalizedName: "Widget"},
	})

	assert.Equal(t, "Widget", table.Normalize("Wdgt"))
	assert.Equal(t, "Widget", table.Normalize("\tWdgt  "))
	assert.Equal(t, "wdgt", table.Normalize("wdgt"), "no case folding")
	assert.Equal(t, "Wdgt2", table.Normalize("Wdgt2"), "no fuzzy matching")
}

func TestNewTable_FirstEntryWins(t *testing.T) {
	table := NewTable([]types.MappingEntry{
		{RawName: "Wdgt", NormalizedName: "Widget"},
		{RawName: "Wdgt", NormalizedName: "Gizmo"},
		{RawName: "Blank", NormalizedName: "  "},
	})

	assert.Equal(t, "Widget", table.Normalize("Wdgt"))
	assert.Equal(t, "Blank", table.Normalize("Blank"))
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 2, table.Skipped())
}

func TestNormalize_Idempotent(t *testing.T) {
	table := NewTable([]types.MappingEntry{
		{RawName: "Wdgt", NormalizedName: "Widget"},
		{RawName: "widget (L)", NormalizedName: "Widget"},
	})

	for _, desc := range []string{"Wdgt", "widget (L)", "Widget", "Other"} {
		once := table.Normalize(desc)
		assert.Equal(t, once, table.Normalize(once), desc)
	}
}

func TestLookup_ReturnsHints(t *testing.T) {
	table := NewTable([]types.MappingEntry{
		{RawName: "Wdgt", NormalizedName: "Widget", UnitHint: "pcs", PackSizeHint: "12"},
	})

	entry, ok := table.Lookup(" Wdgt")
	require.True(t, ok)
	assert.Equal(t, "pcs", entry.UnitHint)
	assert.Equal(t, "12", entry.PackSizeHint)

	_, ok = table.Lookup("Widget")
	assert.False(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "map_dictionary.csv"), LoadOptions{Encoding: "UTF-8"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, "Wdgt", table.Normalize("Wdgt"))
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map_dictionary.csv")
	content := "raw_name,normalized_name,unit_hint,pack_size_hint\nWdgt ,Widget,pcs,\nGdgt,Gadget,,6\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := Load(path, LoadOptions{Encoding: "UTF-8"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "Widget", table.Normalize("Wdgt"))
	assert.Equal(t, "Gadget", table.Normalize("Gdgt"))
}

func TestLoad_ShiftJISCSV(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("raw_name,normalized_name\n玉ねぎ 10kg,玉ねぎ\n")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "map_dictionary.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	table, err := Load(path, LoadOptions{Encoding: "Shift_JIS"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "玉ねぎ", table.Normalize("玉ねぎ 10kg"))
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"raw_name", "normalized_name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Wdgt", "Widget"}))

	path := filepath.Join(t.TempDir(), "map_dictionary.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := Load(path, LoadOptions{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Widget", table.Normalize("Wdgt"))
}

func TestLoad_XLSXNamedSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"notes"}))
	_, err := f.NewSheet("mapping")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("mapping", "A1", &[]interface{}{"raw_name", "normalized_name", "unit_hint"}))
	require.NoError(t, f.SetSheetRow("mapping", "A2", &[]interface{}{"Gdgt", "Gadget", "box"}))

	path := filepath.Join(t.TempDir(), "map_dictionary.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := Load(path, LoadOptions{Sheet: "mapping"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Gadget", table.Normalize("Gdgt"))

	entry, ok := table.Lookup("Gdgt")
	require.True(t, ok)
	assert.Equal(t, "box", entry.UnitHint)
}

func TestLoad_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map_dictionary.csv")
	require.NoError(t, os.WriteFile(path, []byte("from,to\nWdgt,Widget\n"), 0o644))

	_, err := Load(path, LoadOptions{Encoding: "UTF-8"}, zap.NewNop())
	require.Error(t, err)
}

func TestLoad_HeaderOnlyIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map_dictionary.csv")
	require.NoError(t, os.WriteFile(path, []byte("raw_name,normalized_name,unit_hint,pack_size_hint\n"), 0o644))

	table, err := Load(path, LoadOptions{Encoding: "UTF-8"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}
