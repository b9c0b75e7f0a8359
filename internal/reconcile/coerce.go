package reconcile

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/ginjaninja78/invoice-price-comparison/internal/mapping"
	"github.com/ginjaninja78/invoice-price-comparison/internal/types"
)

// numberNoise is stripped from raw numeric text before parsing: the
// thousands separator and the yen sign.
var numberNoise = strings.NewReplacer(",", "", "¥", "")

// ParseNumber converts locale-formatted text such as "¥1,200" into a number.
// Full-width digits and currency signs are folded to their narrow forms
// first. Empty, unparsable and non-finite input is absent.
func ParseNumber(raw string) types.Number {
	if raw == "" {
		return types.None()
	}

	s := strings.TrimSpace(numberNoise.Replace(width.Fold.String(raw)))
	if s == "" {
		return types.None()
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.None()
	}
	return types.Some(v)
}

// Divide returns a / b. The result is absent when either operand is absent,
// when b is zero, or when the quotient is not finite.
func Divide(a, b types.Number) types.Number {
	if !a.Valid || !b.Valid || b.Value == 0 {
		return types.None()
	}
	return types.Some(a.Value / b.Value)
}

// Multiply returns a × b, absent when either operand is absent or the
// product overflows.
func Multiply(a, b types.Number) types.Number {
	if !a.Valid || !b.Valid {
		return types.None()
	}
	return types.Some(a.Value * b.Value)
}

// Coerce normalizes the record's name through table, parses its numeric
// fields and fills the derivable gaps, in order:
//
//  1. amount     = qty × unit_price
//  2. unit_price = amount / qty
//  3. tax_rate   = defaultTaxRate
//
// A value parsed from the record is never replaced. The effective unit price
// is amount / qty.
func Coerce(record types.LineItemRecord, table *mapping.Table, defaultTaxRate float64) types.NormalizedLineItem {
	item := types.NormalizedLineItem{
		LineItemRecord: record,
		NormalizedName: table.Normalize(record.RawDesc),
		Qty:            ParseNumber(record.Qty),
		UnitPrice:      ParseNumber(record.UnitPrice),
		Amount:         ParseNumber(record.Amount),
		TaxRate:        ParseNumber(record.TaxRate),
	}

	item.Amount = item.Amount.Or(Multiply(item.Qty, item.UnitPrice))
	item.UnitPrice = item.UnitPrice.Or(Divide(item.Amount, item.Qty))
	item.TaxRate = item.TaxRate.Or(types.Some(defaultTaxRate))

	item.EffectiveUnitPrice = EffectiveUnitPrice(item)

	return item
}

// CoerceAll applies Coerce to every record.
func CoerceAll(records []types.LineItemRecord, table *mapping.Table, defaultTaxRate float64) []types.NormalizedLineItem {
	items := make([]types.NormalizedLineItem, len(records))
	for i, record := range records {
		items[i] = Coerce(record, table, defaultTaxRate)
	}
	return items
}
