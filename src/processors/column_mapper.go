package processors

import (
	"strings"

	"github.com/username/partsviewer/backend/src/models"
)

// fieldAliases are matched as case-insensitive substrings of the header
// labels, in order; the first alias that hits any header wins.
var fieldAliases = map[string][]string{
	models.FieldPartName: {"partname", "part_name", "name", "부품명"},
	models.FieldVendor:   {"vendor", "supplier", "공급업체", "업체"},
	models.FieldPrice:    {"price", "unit_price", "cost", "단가", "가격", "원화", "달러", "원", "$"},
	models.FieldSAPCode:  {"sap_code", "sap", "code", "SAP코드"},
	models.FieldCategory: {"category", "cat", "type", "카테고리", "분류"},
	models.FieldID:       {"id", "part_id"},
}

type columnMapperImpl struct{}

func NewColumnMapper() ColumnMapper {
	return &columnMapperImpl{}
}

// Suggest proposes a header for every canonical field. Fields with no
// matching header stay unmapped, and one header may serve several fields.
func (m *columnMapperImpl) Suggest(headers []string) models.ColumnMapping {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(h)
	}

	var mapping models.ColumnMapping
	for _, field := range models.CanonicalFields {
		mapping.Set(field, findHeader(headers, lower, fieldAliases[field]))
	}
	return mapping
}

func findHeader(headers, lower []string, aliases []string) string {
	for _, alias := range aliases {
		a := strings.ToLower(alias)
		for i, h := range lower {
			if strings.Contains(h, a) {
				return headers[i]
			}
		}
	}
	return ""
}

// Apply projects one sheet row onto the canonical fields of mapping.
func (m *columnMapperImpl) Apply(index int, row models.Row, mapping models.ColumnMapping) models.MappedRow {
	mr := models.MappedRow{Index: index, Raw: row}
	mr.PartName, _ = row.Cell(mapping.PartName)
	mr.Vendor, _ = row.Cell(mapping.Vendor)
	if price, ok := row.Cell(mapping.Price); ok {
		mr.Price = price
	}
	mr.SAPCode, mr.HasSAP = row.Cell(mapping.SAPCode)
	mr.Category, _ = row.Cell(mapping.Category)
	mr.ID, _ = row.Cell(mapping.ID)
	return mr
}

// MissingRequired lists the required fields mapping leaves unmapped.
func MissingRequired(mapping models.ColumnMapping) []string {
	var missing []string
	for _, field := range []string{models.FieldPartName, models.FieldVendor, models.FieldPrice} {
		if mapping.Header(field) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
