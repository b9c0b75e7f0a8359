// =============================================================================
// Invoice Price Comparison - Shared Types
// =============================================================================
//
// This package contains the record types that flow between the two stages.
// They live here so that the extraction, mapping, reconcile and csvwriter
// packages can share them without importing each other:
//
//   extraction  -> LineItemRecord           (lines_*.csv, all_lines_combined.csv)
//   mapping     -> MappingEntry             (map_dictionary.csv / .xlsx)
//   reconcile   -> NormalizedLineItem       (in memory only)
//               -> CheapestRecord           (cheapest_by_item.csv)
//
// =============================================================================

package types

import "math"

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Column headers of the line-item artifacts, in output order.
const (
	ColSupplier    = "supplier"
	ColInvoiceDate = "invoice_date"
	ColRawDesc     = "raw_desc"
	ColQty         = "qty"
	ColUnit        = "unit"
	ColUnitPrice   = "unit_price"
	ColAmount      = "amount"
	ColTaxRate     = "tax_rate"
	ColSourceFile  = "source_file"
)

// Column headers of the mapping table.
const (
	ColRawName        = "raw_name"
	ColNormalizedName = "normalized_name"
	ColUnitHint       = "unit_hint"
	ColPackSizeHint   = "pack_size_hint"
)

// Column headers of the cheapest-by-item artifact.
const (
	ColCheapestSupplier  = "cheapest_supplier"
	ColCheapestUnitPrice = "cheapest_unit_price"
)

// LineColumns is the header of a per-document line file.
var LineColumns = []string{
	ColSupplier, ColInvoiceDate, ColRawDesc, ColQty,
	ColUnit, ColUnitPrice, ColAmount, ColTaxRate,
}

// CombinedColumns is the header of the combined line file.
var CombinedColumns = append(append([]string{}, LineColumns...), ColSourceFile)

// CheapestColumns is the header of the cheapest-by-item file.
var CheapestColumns = []string{ColNormalizedName, ColCheapestSupplier, ColCheapestUnitPrice}

// =============================================================================
// LINE ITEMS
// =============================================================================

// LineItemRecord is one invoice line item as extracted, before any validation.
//
// Every text field may be absent; absence is the empty string. The extraction
// service never reports empty values and the CSV artifacts store absence as an
// empty cell, so the two cannot be confused.
type LineItemRecord struct {
	Supplier    string
	InvoiceDate string
	RawDesc     string
	Qty         string
	Unit        string
	UnitPrice   string
	Amount      string
	TaxRate     string

	// SourceFile is the base name of the originating document. It is set after
	// extraction and only written to the combined file.
	SourceFile string
}

// Values returns the record's cells in LineColumns order, followed by the
// source file when withSource is set.
func (r LineItemRecord) Values(withSource bool) []string {
	values := []string{
		r.Supplier, r.InvoiceDate, r.RawDesc, r.Qty,
		r.Unit, r.UnitPrice, r.Amount, r.TaxRate,
	}
	if withSource {
		values = append(values, r.SourceFile)
	}
	return values
}

// LineItemFromRow builds a record from a header-keyed CSV row. Missing columns
// are treated as absent values.
func LineItemFromRow(row map[string]string) LineItemRecord {
	return LineItemRecord{
		Supplier:    row[ColSupplier],
		InvoiceDate: row[ColInvoiceDate],
		RawDesc:     row[ColRawDesc],
		Qty:         row[ColQty],
		Unit:        row[ColUnit],
		UnitPrice:   row[ColUnitPrice],
		Amount:      row[ColAmount],
		TaxRate:     row[ColTaxRate],
		SourceFile:  row[ColSourceFile],
	}
}

// NormalizedLineItem is a LineItemRecord after name normalization and numeric
// coercion.
type NormalizedLineItem struct {
	LineItemRecord

	// NormalizedName is the canonical catalog name; empty when the row had no
	// description at all.
	NormalizedName string

	Qty       Number
	UnitPrice Number
	Amount    Number
	TaxRate   Number

	// EffectiveUnitPrice is Amount / Qty, the comparison key.
	EffectiveUnitPrice Number
}

// =============================================================================
// NUMBERS
// =============================================================================

// Number is an optional float. The zero value is absent.
type Number struct {
	Value float64
	Valid bool
}

// Some returns a valid Number, or an absent one when v is NaN or infinite.
func Some(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// None returns an absent Number.
func None() Number {
	return Number{}
}

// Or returns n if it is valid and fallback otherwise.
func (n Number) Or(fallback Number) Number {
	if n.Valid {
		return n
	}
	return fallback
}

// =============================================================================
// MAPPING TABLE
// =============================================================================

// MappingEntry is one row of the user-maintained mapping table.
type MappingEntry struct {
	RawName        string
	NormalizedName string
	UnitHint       string
	PackSizeHint   string
}

// =============================================================================
// RESULTS
// =============================================================================

// CheapestRecord is the lowest observed effective unit price for one
// canonical item.
type CheapestRecord struct {
	NormalizedName    string
	CheapestSupplier  string
	CheapestUnitPrice float64
}
