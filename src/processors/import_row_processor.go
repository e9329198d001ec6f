package processors

import (
	"strings"

	"github.com/username/partsviewer/backend/src/models"
)

type importRowProcessorImpl struct {
	mapper ColumnMapper
}

func NewImportRowProcessor(mapper ColumnMapper) ImportRowProcessor {
	return &importRowProcessorImpl{mapper: mapper}
}

// Process maps, classifies and validates every sheet row. Invalid rows are
// kept with their errors so they can be reported as skips. Among valid rows
// the first one per dedup key wins and later ones are flagged as duplicates.
func (p *importRowProcessorImpl) Process(sheet *models.Sheet, mapping models.ColumnMapping) []models.ImportRow {
	rows := make([]models.ImportRow, 0, len(sheet.Rows))
	dups := NewDuplicateTracker()

	for i, raw := range sheet.Rows {
		mapped := p.mapper.Apply(i, raw, mapping)
		validation := ValidateRow(mapped, mapping)
		amounts := ClassifyCurrency(mapped.Price)

		row := models.ImportRow{
			Index:    i,
			PartName: strings.TrimSpace(mapped.PartName),
			Vendor:   strings.TrimSpace(mapped.Vendor),
			Price:    amounts.Normalized(),
			PriceUSD: amounts.USD,
			PriceKRW: amounts.KRW,
			Category: strings.TrimSpace(mapped.Category),
			ID:       strings.TrimSpace(mapped.ID),
			Raw:      raw,
		}
		if mapping.SAPCode != "" && mapped.HasSAP {
			code := mapped.SAPCode
			row.SAPCode = &code
		}
		if !validation.Valid {
			row.Errors = validation.Errors
		} else if !dups.Claim(DedupKey(row.PartName, row.SAPCode)) {
			row.Errors = []string{ErrMsgDuplicateInFile}
		}
		rows = append(rows, row)
	}
	return rows
}

// FromBulk converts JSON bulk rows. Text prices go through ClassifyCurrency
// unless the row already states a typed amount. Rows are checked with the
// same rules as sheet rows; duplicates are left to the reconciler.
func (p *importRowProcessorImpl) FromBulk(in []models.BulkRow) []models.ImportRow {
	rows := make([]models.ImportRow, 0, len(in))
	for i, b := range in {
		amounts := models.CurrencyAmounts{USD: b.PriceUSD, KRW: b.PriceKRW}
		price := b.Price
		if amounts.USD == nil && amounts.KRW == nil {
			amounts = ClassifyCurrency(b.Price)
		} else if typed := amounts.Normalized(); typed != nil {
			price = *typed
		}

		// A blank SAP code is stored as NULL, so the blank-code rule does
		// not apply to bulk rows.
		validation := ValidateRow(models.MappedRow{
			Index:    i,
			PartName: b.PartName,
			Vendor:   b.Vendor,
			Price:    price,
		}, models.ColumnMapping{})

		row := models.ImportRow{
			Index:    i,
			PartName: strings.TrimSpace(b.PartName),
			Vendor:   strings.TrimSpace(b.Vendor),
			Price:    amounts.Normalized(),
			PriceUSD: amounts.USD,
			PriceKRW: amounts.KRW,
			SAPCode:  b.SAPCode,
			Category: strings.TrimSpace(b.Category),
			ID:       strings.TrimSpace(b.ID),
		}
		if !validation.Valid {
			row.Errors = validation.Errors
		}
		rows = append(rows, row)
	}
	return rows
}
