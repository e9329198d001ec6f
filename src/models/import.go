package models

// Canonical field names a spreadsheet column can be mapped to.
const (
	FieldPartName = "partname"
	FieldVendor   = "vendor"
	FieldPrice    = "price"
	FieldSAPCode  = "sap_code"
	FieldCategory = "category"
	FieldID       = "id"
)

// CanonicalFields lists the mappable fields in the order they are suggested.
var CanonicalFields = []string{FieldPartName, FieldVendor, FieldPrice, FieldSAPCode, FieldCategory, FieldID}

// ColumnMapping assigns each canonical field to at most one source header.
// An empty header means the field is unmapped.
type ColumnMapping struct {
	PartName string `json:"partname"`
	Vendor   string `json:"vendor"`
	Price    string `json:"price"`
	SAPCode  string `json:"sap_code"`
	Category string `json:"category"`
	ID       string `json:"id"`
}

// Header returns the source header mapped to field.
func (m ColumnMapping) Header(field string) string {
	switch field {
	case FieldPartName:
		return m.PartName
	case FieldVendor:
		return m.Vendor
	case FieldPrice:
		return m.Price
	case FieldSAPCode:
		return m.SAPCode
	case FieldCategory:
		return m.Category
	case FieldID:
		return m.ID
	}
	return ""
}

// Set maps field to header. Unknown fields are ignored.
func (m *ColumnMapping) Set(field, header string) {
	switch field {
	case FieldPartName:
		m.PartName = header
	case FieldVendor:
		m.Vendor = header
	case FieldPrice:
		m.Price = header
	case FieldSAPCode:
		m.SAPCode = header
	case FieldCategory:
		m.Category = header
	case FieldID:
		m.ID = header
	}
}

// MappedRow is a sheet row projected onto the canonical fields. Values are
// untrimmed raw cells; the Has* flags record whether the cell existed.
type MappedRow struct {
	Index    int
	PartName string
	Vendor   string
	Price    any
	SAPCode  string
	HasSAP   bool
	Category string
	ID       string
	Raw      Row
}

// CurrencyAmounts is the classifier result. At most one field is non-nil.
type CurrencyAmounts struct {
	USD *float64 `json:"price_usd"`
	KRW *float64 `json:"price_krw"`
}

// Normalized is USD when present, else KRW, else nil.
func (c CurrencyAmounts) Normalized() *float64 {
	if c.USD != nil {
		return c.USD
	}
	return c.KRW
}

type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ImportRow is one row handed to the reconciler. Index is the row's position
// in the uploaded sheet; Errors carries validation failures found upstream.
type ImportRow struct {
	Index    int      `json:"index"`
	PartName string   `json:"partname"`
	Vendor   string   `json:"vendor"`
	Price    *float64 `json:"price"`
	PriceUSD *float64 `json:"price_usd"`
	PriceKRW *float64 `json:"price_krw"`
	SAPCode  *string  `json:"sap_code"`
	Category string   `json:"category"`
	ID       string   `json:"id,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Raw      Row      `json:"raw,omitempty"`
}

// BulkRow is one row of a JSON bulk import. Price is a number or text that
// may carry a currency marker; explicit PriceUSD/PriceKRW take precedence.
type BulkRow struct {
	ID       string   `json:"id,omitempty"`
	PartName string   `json:"partname"`
	Vendor   string   `json:"vendor"`
	Price    any      `json:"price"`
	PriceUSD *float64 `json:"price_usd"`
	PriceKRW *float64 `json:"price_krw"`
	SAPCode  *string  `json:"sap_code"`
	Category string   `json:"category"`
}
