package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoice-price-comparison/internal/types"
)

func TestChooseField_Priority(t *testing.T) {
	fields := map[string]string{"Qty": "3", "数量": "2"}

	value, ok := ChooseField(fields, FieldCandidates[FieldQty])
	require.True(t, ok)
	assert.Equal(t, "2", value, "数量 outranks Qty")

	_, ok = ChooseField(fields, FieldCandidates[FieldTaxRate])
	assert.False(t, ok)
}

func TestFieldCandidates_Coverage(t *testing.T) {
	for _, field := range []Field{FieldQty, FieldUnitPrice, FieldAmount, FieldDesc, FieldUnit, FieldTaxRate} {
		assert.NotEmpty(t, FieldCandidates[field], string(field))
	}

	assert.Equal(t, "Quantity", FieldCandidates[FieldQty][0])
	assert.Equal(t, "UnitPrice", FieldCandidates[FieldUnitPrice][0])
	assert.Equal(t, "Amount", FieldCandidates[FieldAmount][0])
	assert.Equal(t, "Item", FieldCandidates[FieldDesc][0])
}

func TestFieldMap(t *testing.T) {
	m := FieldMap([]ExpenseField{
		{Type: "QUANTITY", Value: "1"},
		{Type: "QUANTITY", Value: "2"},
		{Type: "ITEM", Value: ""},
		{Type: "", Label: "数量", Value: "5"},
		{Type: "OTHER", Label: "QUANTITY", Value: "9"},
	})

	assert.Equal(t, "2", m["QUANTITY"], "later type wins, labels never override types")
	assert.Equal(t, "5", m["数量"])
	assert.Equal(t, "9", m["OTHER"])
	_, ok := m["ITEM"]
	assert.False(t, ok, "empty values are dropped")
}

func TestRowsFromDocuments_HeaderResolution(t *testing.T) {
	docs := []ExpenseDocument{{
		SummaryFields: []ExpenseField{
			{Type: "RECEIVER_NAME", Value: "Us"},
			{Type: "SUPPLIER_NAME", Value: "Acme"},
			{Type: "INVOICE_DATE", Value: "2024/01/31"},
		},
		LineItemGroups: []LineItemGroup{{LineItems: []LineItem{
			{Fields: []ExpenseField{
				{Type: "ITEM", Value: "Widget"},
				{Type: "QUANTITY", Value: "2"},
				{Type: "PRICE", Value: "¥200"},
			}},
		}}},
	}}

	rows := RowsFromDocuments(docs)
	require.Len(t, rows, 1)
	assert.Equal(t, types.LineItemRecord{
		Supplier:    "Acme",
		InvoiceDate: "2024/01/31",
		RawDesc:     "Widget",
		Qty:         "2",
		Amount:      "¥200",
	}, rows[0])
}

func TestRowsFromDocuments_LocalizedLabels(t *testing.T) {
	docs := []ExpenseDocument{{
		SummaryFields: []ExpenseField{
			{Type: "VENDOR_NAME", Value: "八百屋"},
			{Type: "INVOICE_RECEIPT_DATE", Value: "2024-02-01"},
			{Type: "INVOICE_DATE", Value: "ignored"},
		},
		LineItemGroups: []LineItemGroup{
			{LineItems: []LineItem{{Fields: []ExpenseField{
				{Type: "OTHER", Label: "品名", Value: "玉ねぎ"},
				{Type: "OTHER", Label: "単位", Value: "kg"},
				{Type: "OTHER", Label: "単価(税抜)", Value: "300"},
				{Type: "OTHER", Label: "消費税率", Value: "8%"},
			}}}},
			{LineItems: []LineItem{{Fields: nil}}},
		},
	}}

	rows := RowsFromDocuments(docs)
	require.Len(t, rows, 2, "one row per line item across groups")

	assert.Equal(t, "八百屋", rows[0].Supplier)
	assert.Equal(t, "2024-02-01", rows[0].InvoiceDate)
	assert.Equal(t, "玉ねぎ", rows[0].RawDesc)
	assert.Equal(t, "kg", rows[0].Unit)
	assert.Equal(t, "300", rows[0].UnitPrice)
	assert.Equal(t, "8%", rows[0].TaxRate)

	assert.Equal(t, "八百屋", rows[1].Supplier)
	assert.Empty(t, rows[1].RawDesc)
}

func TestRowsFromDocuments_Empty(t *testing.T) {
	assert.Empty(t, RowsFromDocuments(nil))
	assert.Empty(t, RowsFromDocuments([]ExpenseDocument{{}}))
}
