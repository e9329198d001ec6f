package processors

import (
	"github.com/username/partsviewer/backend/src/models"
)

// ColumnMapper suggests and applies header-to-field mappings.
type ColumnMapper interface {
	Suggest(headers []string) models.ColumnMapping
	Apply(index int, row models.Row, mapping models.ColumnMapping) models.MappedRow
}

// ImportRowProcessor turns uploaded rows into reconciler input.
type ImportRowProcessor interface {
	Process(sheet *models.Sheet, mapping models.ColumnMapping) []models.ImportRow
	FromBulk(rows []models.BulkRow) []models.ImportRow
}
