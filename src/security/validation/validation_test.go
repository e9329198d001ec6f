package validation

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateClientContentType(t *testing.T) {
	require.NoError(t, ValidateClientContentType("parts.csv", "text/csv; charset=utf-8"))
	require.NoError(t, ValidateClientContentType("parts.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	require.NoError(t, ValidateClientContentType("parts.XLS", "application/vnd.ms-excel"))
	require.NoError(t, ValidateClientContentType("parts.csv", ""))

	require.Error(t, ValidateClientContentType("parts.csv", "image/png"))
	require.Error(t, ValidateClientContentType("parts.pdf", "application/pdf"))
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	csv := strings.NewReader("partname,vendor,price\nR1,AJA,1200\n")
	_, err := ValidateFileContentByMagicBytes("parts.csv", csv)
	require.NoError(t, err)
	rest, err := io.ReadAll(csv)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(rest), "partname"), "reader is rewound")

	_, err = ValidateFileContentByMagicBytes("parts.xlsx", bytes.NewReader(append([]byte("PK\x03\x04"), make([]byte, 20)...)))
	require.NoError(t, err)
	_, err = ValidateFileContentByMagicBytes("parts.xls", bytes.NewReader(append(append([]byte{}, oleMagic...), 1, 2, 3)))
	require.NoError(t, err)

	_, err = ValidateFileContentByMagicBytes("parts.xlsx", strings.NewReader("partname,vendor\n"))
	require.Error(t, err)
	_, err = ValidateFileContentByMagicBytes("parts.csv", bytes.NewReader([]byte("PK\x03\x04rest")))
	require.Error(t, err)
	_, err = ValidateFileContentByMagicBytes("parts.txt", strings.NewReader("x"))
	require.Error(t, err)
}

func TestSanitizers(t *testing.T) {
	require.Equal(t, "'=SUM(A1)", SanitizeForFormulaInjection("=SUM(A1)"))
	require.Equal(t, "R-1", SanitizeForFormulaInjection("R-1"))
	require.Equal(t, "ab", StripUnprintable("a\x00b"))
	require.Equal(t, "parts.csv", SanitizeFilename(`C:\Users\kim\parts.csv`))
	require.Equal(t, "parts.csv", SanitizeFilename("../../parts.csv"))
}
