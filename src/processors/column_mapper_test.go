package processors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/username/partsviewer/backend/src/models"
)

func TestSuggestMappingEnglishHeaders(t *testing.T) {
	mapper := NewColumnMapper()
	got := mapper.Suggest([]string{"Part_Name", "Supplier", "Unit_Price", "SAP_Code", "Category"})

	require.Equal(t, models.ColumnMapping{
		PartName: "Part_Name",
		Vendor:   "Supplier",
		Price:    "Unit_Price",
		SAPCode:  "SAP_Code",
		Category: "Category",
	}, got)
}

func TestSuggestMappingKoreanSheetLabels(t *testing.T) {
	mapper := NewColumnMapper()
	headers := []string{"A열: 부품명", "B열: 공급업체", "C열: 단가", "D열: SAP코드", "E열: 분류", "F열 (빈칸)"}
	got := mapper.Suggest(headers)

	require.Equal(t, "A열: 부품명", got.PartName)
	require.Equal(t, "B열: 공급업체", got.Vendor)
	require.Equal(t, "C열: 단가", got.Price)
	require.Equal(t, "D열: SAP코드", got.SAPCode)
	require.Equal(t, "E열: 분류", got.Category)
	require.Empty(t, got.ID)
}

func TestSuggestMappingAliasOrderWins(t *testing.T) {
	mapper := NewColumnMapper()
	// "name" is a weaker alias than "partname", so the later header wins.
	got := mapper.Suggest([]string{"vendor name", "PartName"})
	require.Equal(t, "PartName", got.PartName)
	require.Equal(t, "vendor name", got.Vendor)
}

func TestApplyRecordsMissingCells(t *testing.T) {
	mapper := NewColumnMapper()
	mapping := models.ColumnMapping{PartName: "name", Vendor: "vendor", Price: "price", SAPCode: "sap"}
	row := models.Row{"name": "R1", "vendor": "AJA", "price": "1200원"}

	mapped := mapper.Apply(3, row, mapping)
	require.Equal(t, 3, mapped.Index)
	require.Equal(t, "R1", mapped.PartName)
	require.Equal(t, "1200원", mapped.Price)
	require.False(t, mapped.HasSAP)

	require.Empty(t, MissingRequired(mapping))
	require.Equal(t, []string{models.FieldVendor, models.FieldPrice}, MissingRequired(models.ColumnMapping{PartName: "name"}))
}
