package processors

import (
	"strings"

	"github.com/username/partsviewer/backend/src/models"
)

const (
	ErrMsgPartNameMissing      = "partname missing"
	ErrMsgVendorMissing        = "vendor missing"
	ErrMsgCurrencyUndetectable = "currency undetectable"
	ErrMsgSAPCodeBlank         = "sap_code blank"
	ErrMsgDuplicateInFile      = "duplicate within file"
)

// ValidateRow checks one mapped row. Every rule runs; errors accumulate in
// rule order.
func ValidateRow(row models.MappedRow, mapping models.ColumnMapping) models.Validation {
	errs := []string{}

	if strings.TrimSpace(row.PartName) == "" {
		errs = append(errs, ErrMsgPartNameMissing)
	}
	if strings.TrimSpace(row.Vendor) == "" {
		errs = append(errs, ErrMsgVendorMissing)
	}
	if amounts := ClassifyCurrency(row.Price); amounts.USD == nil && amounts.KRW == nil {
		errs = append(errs, ErrMsgCurrencyUndetectable)
	}
	// A mapped SAP column whose cell holds only whitespace.
	if mapping.SAPCode != "" && row.HasSAP && row.SAPCode != "" && strings.TrimSpace(row.SAPCode) == "" {
		errs = append(errs, ErrMsgSAPCodeBlank)
	}

	return models.Validation{Valid: len(errs) == 0, Errors: errs}
}

// DedupKey identifies a part within one file: trimmed name and SAP code.
func DedupKey(partName string, sapCode *string) string {
	code := ""
	if sapCode != nil {
		code = strings.TrimSpace(*sapCode)
	}
	return strings.TrimSpace(partName) + "|" + code
}

// DuplicateTracker remembers which dedup keys a file has already produced.
type DuplicateTracker struct {
	seen map[string]struct{}
}

func NewDuplicateTracker() *DuplicateTracker {
	return &DuplicateTracker{seen: make(map[string]struct{})}
}

// Claim records key and reports whether it was new. The first row with a
// key wins; later ones are duplicates.
func (d *DuplicateTracker) Claim(key string) bool {
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}
