package parsers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGetParserByExtension(t *testing.T) {
	for _, name := range []string{"parts.csv", "PARTS.XLSX", "legacy.xls"} {
		p, err := GetParser(name)
		require.NoError(t, err, name)
		require.NotNil(t, p)
	}
	_, err := GetParser("parts.pdf")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCSVParser(t *testing.T) {
	p, err := GetParser("parts.csv")
	require.NoError(t, err)

	input := "\xEF\xBB\xBFpartname,vendor,price,name\n" +
		"R1,AJA,1200원,x\n" +
		"\n" +
		"C1,X,$5\n"
	sheet, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, []string{"partname", "vendor", "price", "name"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	require.Equal(t, "1200원", sheet.Rows[0]["price"])
	_, ok := sheet.Rows[1].Cell("name")
	require.False(t, ok, "short rows lack trailing cells")
}

func TestCSVParserDuplicateHeaders(t *testing.T) {
	p, _ := GetParser("parts.csv")
	sheet, err := p.Parse(strings.NewReader("price,price,price_1\n1,2,3\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"price", "price_1", "price_1_1"}, sheet.Headers)
	require.Equal(t, "2", sheet.Rows[0]["price_1"])
}

func TestCSVParserRejectsHeaderOnly(t *testing.T) {
	p, _ := GetParser("parts.csv")
	_, err := p.Parse(strings.NewReader("partname,vendor,price\n"))
	require.Error(t, err)
}

func TestXLSXParserLabelsColumns(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"부품명", "", "단가"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"R1", "AJA", 1500}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"C1", "X", "$5"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	p, err := GetParser("upload.xlsx")
	require.NoError(t, err)
	got, err := p.Parse(&buf)
	require.NoError(t, err)

	require.Equal(t, []string{"A열: 부품명", "B열 (빈칸)", "C열: 단가"}, got.Headers)
	require.Len(t, got.Rows, 2, "blank row 3 is dropped")
	require.Equal(t, "AJA", got.Rows[0]["B열 (빈칸)"])
	require.Equal(t, "1500", got.Rows[0]["C열: 단가"])
	require.Equal(t, "$5", got.Rows[1]["C열: 단가"])
}

func TestXLSXParserNeedsDataRow(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"부품명"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	p, _ := GetParser("upload.xlsx")
	_, err := p.Parse(&buf)
	require.Error(t, err)
}
