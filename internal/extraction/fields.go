package extraction

// Field is an internal line-item field fed from the service's vocabulary.
type Field string

const (
	FieldQty       Field = "qty"
	FieldUnitPrice Field = "unit_price"
	FieldAmount    Field = "amount"
	FieldDesc      Field = "desc"
	FieldUnit      Field = "unit"
	FieldTaxRate   Field = "tax_rate"
)

// CandidatesVersion identifies the label vocabulary below. Bump it whenever a
// list changes so extracted files can be traced to the vocabulary that
// produced them.
const CandidatesVersion = 2

// FieldCandidates lists, per field, the labels that may carry it, highest
// priority first. Printed labels (English and Japanese) come first; the
// upper-case entries are the service's normalized line-item types.
var FieldCandidates = map[Field][]string{
	FieldQty:       {"Quantity", "数量", "数", "Qty", "QUANTITY"},
	FieldUnitPrice: {"UnitPrice", "単価", "単価(税抜)", "単価(税込)", "UNIT_PRICE"},
	FieldAmount:    {"Amount", "金額", "合計", "金額(税抜)", "金額(税込)", "PRICE"},
	FieldDesc:      {"Item", "Description", "品名", "商品名", "規格", "品名・規格", "ITEM"},
	FieldUnit:      {"UnitCode", "単位"},
	FieldTaxRate:   {"TaxRate", "消費税率", "Tax %"},
}

// Header field types, in resolution order.
var (
	SupplierCandidates    = []string{"VENDOR_NAME", "SUPPLIER_NAME", "RECEIVER_NAME"}
	InvoiceDateCandidates = []string{"INVOICE_RECEIPT_DATE", "INVOICE_DATE"}
)

// ChooseField returns the value of the first candidate present in fields.
func ChooseField(fields map[string]string, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if value, ok := fields[candidate]; ok {
			return value, true
		}
	}
	return "", false
}

// choose is ChooseField with absence as the empty string.
func choose(fields map[string]string, candidates []string) string {
	value, _ := ChooseField(fields, candidates)
	return value
}
