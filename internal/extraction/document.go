package extraction

import "github.com/ginjaninja78/invoice-price-comparison/internal/types"

// ExpenseField is one detected field: its normalized type, the label printed
// on the document, and the detected value. Any of them may be empty.
type ExpenseField struct {
	Type  string
	Label string
	Value string
}

// LineItem is the field list of one invoice line.
type LineItem struct {
	Fields []ExpenseField
}

// LineItemGroup is one table of line items.
type LineItemGroup struct {
	LineItems []LineItem
}

// ExpenseDocument is one logical invoice as interpreted by the service.
type ExpenseDocument struct {
	SummaryFields  []ExpenseField
	LineItemGroups []LineItemGroup
}

// FieldMap indexes fields by type. Fields without a type or value are
// ignored and a repeated type keeps its last value. Printed labels are
// indexed afterwards, only under keys no type already claimed, so localized
// labels such as 数量 can match their candidates.
func FieldMap(fields []ExpenseField) map[string]string {
	m := make(map[string]string, len(fields))

	for _, f := range fields {
		if f.Type != "" && f.Value != "" {
			m[f.Type] = f.Value
		}
	}
	for _, f := range fields {
		if f.Label == "" || f.Value == "" {
			continue
		}
		if _, taken := m[f.Label]; !taken {
			m[f.Label] = f.Value
		}
	}

	return m
}

// RowsFromDocuments flattens every line item of every document into records.
// Each record carries its document's supplier and invoice date. No documents
// or no line items yield no rows.
func RowsFromDocuments(docs []ExpenseDocument) []types.LineItemRecord {
	var rows []types.LineItemRecord

	for _, doc := range docs {
		header := FieldMap(doc.SummaryFields)
		supplier := choose(header, SupplierCandidates)
		invoiceDate := choose(header, InvoiceDateCandidates)

		for _, group := range doc.LineItemGroups {
			for _, item := range group.LineItems {
				fields := FieldMap(item.Fields)
				rows = append(rows, types.LineItemRecord{
					Supplier:    supplier,
					InvoiceDate: invoiceDate,
					RawDesc:     choose(fields, FieldCandidates[FieldDesc]),
					Qty:         choose(fields, FieldCandidates[FieldQty]),
					Unit:        choose(fields, FieldCandidates[FieldUnit]),
					UnitPrice:   choose(fields, FieldCandidates[FieldUnitPrice]),
					Amount:      choose(fields, FieldCandidates[FieldAmount]),
					TaxRate:     choose(fields, FieldCandidates[FieldTaxRate]),
				})
			}
		}
	}

	return rows
}
