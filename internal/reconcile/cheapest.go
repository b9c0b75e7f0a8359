package reconcile

import (
	"sort"

	"github.com/ginjaninja78/invoice-price-comparison/internal/metrics"
	"github.com/ginjaninja78/invoice-price-comparison/internal/types"
)

// EffectiveUnitPrice is the comparison key: amount / qty. The unit_price
// field is not consulted, and tax or pack size are not normalized.
func EffectiveUnitPrice(item types.NormalizedLineItem) types.Number {
	return Divide(item.Amount, item.Qty)
}

// exclusionReason reports why item cannot take part in selection, or "" if
// it can.
func exclusionReason(item types.NormalizedLineItem) string {
	switch {
	case item.NormalizedName == "":
		return metrics.ReasonNoName
	case !item.EffectiveUnitPrice.Valid:
		return metrics.ReasonNoPrice
	default:
		return ""
	}
}

// SelectCheapest returns one record per normalized name holding the lowest
// effective unit price, in ascending name order. Rows without a name or
// an effective price are ignored. Among equal prices the row that came
// first in items wins.
func SelectCheapest(items []types.NormalizedLineItem) []types.CheapestRecord {
	candidates := make([]types.NormalizedLineItem, 0, len(items))
	for _, item := range items {
		if exclusionReason(item) == "" {
			candidates = append(candidates, item)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.NormalizedName != b.NormalizedName {
			return a.NormalizedName < b.NormalizedName
		}
		return a.EffectiveUnitPrice.Value < b.EffectiveUnitPrice.Value
	})

	var records []types.CheapestRecord
	for i, item := range candidates {
		if i > 0 && candidates[i-1].NormalizedName == item.NormalizedName {
			continue
		}
		records = append(records, types.CheapestRecord{
			NormalizedName:    item.NormalizedName,
			CheapestSupplier:  item.Supplier,
			CheapestUnitPrice: item.EffectiveUnitPrice.Value,
		})
	}

	return records
}
